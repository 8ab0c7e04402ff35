// Package entity defines the request and response shapes of the web layer.
package entity

import (
	"math"
	"net"
	"strings"
	"time"

	"github.com/allblack/allblack-panel/util/common"

	"github.com/robfig/cron/v3"
)

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// CronParser accepts five or six field specs and descriptors like @daily.
var CronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// AllSetting is the panel settings form. Every field maps to one row in the
// settings table keyed by its json tag.
type AllSetting struct {
	WebListen     string `json:"webListen" form:"webListen"`
	WebPort       int    `json:"webPort" form:"webPort"`
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes
	CorsOrigins   string `json:"corsOrigins" form:"corsOrigins"`     // comma separated, empty disables CORS
	PublicBaseURL string `json:"publicBaseURL" form:"publicBaseURL"` // encoded in table QR codes
	TimeLocation  string `json:"timeLocation" form:"timeLocation"`
	TokenTTLHours int    `json:"tokenTTLHours" form:"tokenTTLHours"`

	CustomerPollSeconds  int `json:"customerPollSeconds" form:"customerPollSeconds"`
	DashboardPollSeconds int `json:"dashboardPollSeconds" form:"dashboardPollSeconds"`

	StatsCron           string `json:"statsCron" form:"statsCron"`
	HiddenRetentionDays int    `json:"hiddenRetentionDays" form:"hiddenRetentionDays"` // 0 keeps hidden orders forever

	TgBotEnable       bool   `json:"tgBotEnable" form:"tgBotEnable"`
	TgBotToken        string `json:"tgBotToken" form:"tgBotToken"`
	TgBotChatId       string `json:"tgBotChatId" form:"tgBotChatId"`
	TgNotifyNewOrders bool   `json:"tgNotifyNewOrders" form:"tgNotifyNewOrders"`

	TwoFactorEnable bool   `json:"twoFactorEnable" form:"twoFactorEnable"`
	TwoFactorToken  string `json:"twoFactorToken" form:"twoFactorToken"`
}

// CheckValid validates the form and normalizes the base path.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if s.SessionMaxAge < 0 {
		return common.NewError("session max age can not be negative:", s.SessionMaxAge)
	}
	if s.CustomerPollSeconds <= 0 || s.DashboardPollSeconds <= 0 {
		return common.NewError("poll intervals must be positive")
	}
	if s.HiddenRetentionDays < 0 {
		return common.NewError("hidden retention can not be negative:", s.HiddenRetentionDays)
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	if _, err := time.LoadLocation(s.TimeLocation); err != nil {
		return common.NewError("time location not exist:", s.TimeLocation)
	}

	if _, err := CronParser.Parse(s.StatsCron); err != nil {
		return common.NewErrorf("stats cron <%v> invalid: %v", s.StatsCron, err)
	}

	if s.TgBotEnable && (s.TgBotToken == "" || s.TgBotChatId == "") {
		return common.NewError("telegram bot needs a token and a chat id")
	}
	if s.TwoFactorEnable && s.TwoFactorToken == "" {
		return common.NewError("two factor needs a token")
	}

	return nil
}

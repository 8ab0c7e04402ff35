package controller

import (
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"
	"github.com/allblack/allblack-panel/web/session"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/xlzd/gotp"
)

// updateUserForm represents the form for updating user credentials.
type updateUserForm struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewUsername string `json:"newUsername" form:"newUsername"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

// SettingController handles settings, the admin's own credentials and the
// panel process.
type SettingController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
	panelService   service.PanelService
}

func NewSettingController(g *gin.RouterGroup) *SettingController {
	a := &SettingController{}
	a.initRouter(g)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup) {
	s := g.Group("/setting")
	s.POST("/all", a.getAllSetting)
	s.POST("/update", a.updateSetting)
	s.POST("/updateUser", a.updateUser)
	s.POST("/twoFactor", a.newTwoFactorSecret)
	s.POST("/restartPanel", a.restartPanel)
	s.GET("/status", a.status)

	g.GET("/logs/:count", a.getLogs)
	g.POST("/logs/:count", a.getLogs)
}

func (a *SettingController) getAllSetting(c *gin.Context) {
	allSetting, err := a.settingService.GetAllSetting()
	jsonObj(c, allSetting, err)
}

func (a *SettingController) updateSetting(c *gin.Context) {
	allSetting := &entity.AllSetting{}
	if err := c.ShouldBind(allSetting); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.settings.saved"), a.settingService.UpdateAllSetting(allSetting))
}

func (a *SettingController) updateUser(c *gin.Context) {
	form := &updateUserForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	identity := a.identity(c)
	user, err := a.userService.UpdateCredentials(identity.Id, form.OldPassword, form.NewUsername, form.NewPassword)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	if err := session.SetLoginUser(c, entity.IdentityOf(user)); err != nil {
		logger.Warning("Unable to refresh session:", err)
	}
	jsonMsgObj(c, I18nWeb(c, "pages.users.updated"), user, nil)
}

// newTwoFactorSecret generates a TOTP secret for enrollment. It is only
// saved when the admin submits it with the settings form.
func (a *SettingController) newTwoFactorSecret(c *gin.Context) {
	secret := gotp.RandomSecret(16)
	uri := gotp.NewDefaultTOTP(secret).ProvisioningUri(a.identity(c).Username, config.GetName())
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonObj(c, gin.H{
		"secret": secret,
		"uri":    uri,
		"qrcode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil)
}

func (a *SettingController) restartPanel(c *gin.Context) {
	err := a.panelService.RestartPanel(3 * time.Second)
	jsonMsg(c, I18nWeb(c, "pages.settings.restarting"), err)
}

func (a *SettingController) status(c *gin.Context) {
	jsonObj(c, a.panelService.Status(), nil)
}

// getLogs returns the newest buffered log lines at or above the level form
// value.
func (a *SettingController) getLogs(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil || count <= 0 {
		count = 100
	}
	level := c.PostForm("level")
	if level == "" {
		level = c.DefaultQuery("level", "info")
	}
	jsonObj(c, logger.GetLogs(count, level), nil)
}

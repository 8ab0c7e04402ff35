package entity

import (
	"testing"

	"github.com/allblack/allblack-panel/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSetting() *AllSetting {
	return &AllSetting{
		WebPort:              8080,
		WebBasePath:          "panel",
		TimeLocation:         "UTC",
		StatsCron:            "0 0 23 * * *",
		CustomerPollSeconds:  2,
		DashboardPollSeconds: 3,
	}
}

func TestAllSettingCheckValid(t *testing.T) {
	s := validSetting()
	require.NoError(t, s.CheckValid())
	assert.Equal(t, "/panel/", s.WebBasePath)

	cases := map[string]func(*AllSetting){
		"listen":    func(s *AllSetting) { s.WebListen = "not-an-ip" },
		"port":      func(s *AllSetting) { s.WebPort = 70000 },
		"poll":      func(s *AllSetting) { s.CustomerPollSeconds = 0 },
		"retention": func(s *AllSetting) { s.HiddenRetentionDays = -1 },
		"location":  func(s *AllSetting) { s.TimeLocation = "Mars/Olympus" },
		"cron":      func(s *AllSetting) { s.StatsCron = "every day" },
		"tgbot":     func(s *AllSetting) { s.TgBotEnable = true },
		"2fa":       func(s *AllSetting) { s.TwoFactorEnable = true },
	}
	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			s := validSetting()
			modify(s)
			assert.Error(t, s.CheckValid())
		})
	}
}

func TestCronParserAcceptsBothForms(t *testing.T) {
	for _, spec := range []string{"0 23 * * *", "0 0 23 * * *", "@daily"} {
		_, err := CronParser.Parse(spec)
		assert.NoError(t, err, spec)
	}
}

func TestSelectView(t *testing.T) {
	assert.Equal(t, ViewAdminDashboard, SelectView(model.RoleAdmin))
	assert.Equal(t, ViewEmployeeDashboard, SelectView(model.RoleEmployee))
	assert.Equal(t, ViewCustomerOrdering, SelectView(model.RoleCustomer))
}

func TestIdentityOf(t *testing.T) {
	u := &model.User{Id: 4, Username: "ana", IsEmployee: true, IsAdmin: true}
	assert.Equal(t, Identity{Id: 4, Username: "ana", Role: model.RoleAdmin}, IdentityOf(u))
}

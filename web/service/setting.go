package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timeLocation must resolve on hosts without zoneinfo

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/util/common"
	"github.com/allblack/allblack-panel/util/random"
	"github.com/allblack/allblack-panel/util/reflect_util"
	"github.com/allblack/allblack-panel/web/entity"
)

var defaultValueMap = map[string]string{
	"webListen":            "",
	"webPort":              "8080",
	"webBasePath":          "/",
	"secret":               random.Seq(32),
	"sessionMaxAge":        "720",
	"corsOrigins":          "",
	"publicBaseURL":        "http://localhost:8080/",
	"timeLocation":         "America/Sao_Paulo",
	"tokenTTLHours":        "72",
	"customerPollSeconds":  "2",
	"dashboardPollSeconds": "3",
	"statsCron":            "0 0 23 * * *",
	"hiddenRetentionDays":  "0",
	"tgBotEnable":          "false",
	"tgBotToken":           "",
	"tgBotChatId":          "",
	"tgNotifyNewOrders":    "true",
	"twoFactorEnable":      "false",
	"twoFactorToken":       "",
}

type SettingService struct{}

func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	db := database.GetDB()
	settings := make([]*model.Setting, 0)
	if err := db.Model(model.Setting{}).Not(map[string]any{"key": "secret"}).Find(&settings).Error; err != nil {
		return nil, storeError(err)
	}
	allSetting := &entity.AllSetting{}
	t := reflect.TypeOf(allSetting).Elem()
	v := reflect.ValueOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)

	setSetting := func(key, value string) (err error) {
		defer func() {
			if panicErr := recover(); panicErr != nil {
				err = errors.New(fmt.Sprint(panicErr))
			}
		}()

		var field reflect.StructField
		found := false
		for _, f := range fields {
			if f.Tag.Get("json") == key {
				field = f
				found = true
				break
			}
		}
		if !found {
			// generated keys are not part of the form
			return nil
		}

		fieldV := v.FieldByName(field.Name)
		switch t := fieldV.Interface().(type) {
		case int:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			fieldV.SetInt(n)
		case string:
			fieldV.SetString(value)
		case bool:
			fieldV.SetBool(value == "true")
		default:
			return common.NewErrorf("unknown field %v type %v", key, t)
		}
		return nil
	}

	keyMap := map[string]bool{}
	for _, setting := range settings {
		if err := setSetting(setting.Key, setting.Value); err != nil {
			return nil, err
		}
		keyMap[setting.Key] = true
	}
	for key, value := range defaultValueMap {
		if keyMap[key] {
			continue
		}
		if err := setSetting(key, value); err != nil {
			return nil, err
		}
	}
	return allSetting, nil
}

func (s *SettingService) UpdateAllSetting(allSetting *entity.AllSetting) error {
	if err := allSetting.CheckValid(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	v := reflect.ValueOf(allSetting).Elem()
	fields := reflect_util.GetFields(reflect.TypeOf(allSetting).Elem())
	errs := make([]error, 0)
	for _, field := range fields {
		key := field.Tag.Get("json")
		value := fmt.Sprint(v.FieldByName(field.Name).Interface())
		if err := s.saveSetting(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return common.Combine(errs...)
}

// ResetSettings drops every stored value so the defaults apply again.
func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where(map[string]any{"key": key}).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getBool(key string) (bool, error) {
	str, err := s.getString(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(str)
}

func (s *SettingService) setBool(key string, value bool) error {
	return s.setString(key, strconv.FormatBool(value))
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath, nil
}

// GetSecret returns the cookie and token signing secret, persisting the
// generated default on first use.
func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if err != nil {
		return nil, err
	}
	if secret == defaultValueMap["secret"] {
		if err := s.saveSetting("secret", secret); err != nil {
			logger.Warning("save secret failed:", err)
		}
	}
	return []byte(secret), nil
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) GetCorsOrigins() ([]string, error) {
	raw, err := s.getString("corsOrigins")
	if err != nil {
		return nil, err
	}
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins, nil
}

func (s *SettingService) GetPublicBaseURL() (string, error) {
	return s.getString("publicBaseURL")
}

func (s *SettingService) GetTokenTTL() (time.Duration, error) {
	hours, err := s.getInt("tokenTTLHours")
	if err != nil {
		return 0, err
	}
	return time.Duration(hours) * time.Hour, nil
}

func (s *SettingService) GetCustomerPollSeconds() (int, error) {
	return s.getInt("customerPollSeconds")
}

func (s *SettingService) GetDashboardPollSeconds() (int, error) {
	return s.getInt("dashboardPollSeconds")
}

func (s *SettingService) GetStatsCron() (string, error) {
	return s.getString("statsCron")
}

func (s *SettingService) GetHiddenRetentionDays() (int, error) {
	return s.getInt("hiddenRetentionDays")
}

func (s *SettingService) GetTgbotEnabled() (bool, error) {
	return s.getBool("tgBotEnable")
}

func (s *SettingService) SetTgbotEnabled(value bool) error {
	return s.setBool("tgBotEnable", value)
}

func (s *SettingService) GetTgBotToken() (string, error) {
	return s.getString("tgBotToken")
}

func (s *SettingService) GetTgBotChatId() (string, error) {
	return s.getString("tgBotChatId")
}

func (s *SettingService) GetTgNotifyNewOrders() (bool, error) {
	return s.getBool("tgNotifyNewOrders")
}

func (s *SettingService) GetTwoFactorEnable() (bool, error) {
	return s.getBool("twoFactorEnable")
}

func (s *SettingService) SetTwoFactorEnable(value bool) error {
	return s.setBool("twoFactorEnable", value)
}

func (s *SettingService) GetTwoFactorToken() (string, error) {
	return s.getString("twoFactorToken")
}

func (s *SettingService) SetTwoFactorToken(value string) error {
	return s.setString("twoFactorToken", value)
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		logger.Errorf("location <%v> not exist, using default location: %v", l, defaultLocation)
		return time.LoadLocation(defaultLocation)
	}
	return location, nil
}

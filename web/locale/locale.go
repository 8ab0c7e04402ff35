// Package locale translates the panel's user-facing messages. Translations
// are TOML files embedded by the web package.
package locale

import (
	"io/fs"
	"strings"

	"github.com/allblack/allblack-panel/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when the client asks for nothing we have.
var DefaultLanguage = language.MustParse("pt-BR")

var i18nBundle *i18n.Bundle

// I18nFunc translates key with "name==value" template params.
type I18nFunc func(key string, params ...string) string

// InitLocalizer parses every file under translation/ in i18nFS.
func InitLocalizer(i18nFS fs.FS) error {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	err := fs.WalkDir(i18nFS, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(i18nFS, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
	if err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	sep := "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}
	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}
	return templateData
}

// Translator returns the translation function for the given languages, in
// order of preference. Before InitLocalizer it returns keys unchanged.
func Translator(langs ...string) I18nFunc {
	if i18nBundle == nil {
		return func(key string, _ ...string) string { return key }
	}
	localizer := i18n.NewLocalizer(i18nBundle, langs...)
	return func(key string, params ...string) string {
		msg, err := localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    key,
			TemplateData: createTemplateData(params),
		})
		if err != nil {
			logger.Debug("localize", key, "failed:", err)
			return key
		}
		return msg
	}
}

// LocalizerMiddleware picks the language from the "lang" cookie or the
// Accept-Language header and stores the translator under "I18n".
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}
		c.Set("I18n", Translator(lang))
		c.Next()
	}
}

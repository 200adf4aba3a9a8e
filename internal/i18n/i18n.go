// Package i18n renders lunar dates and calendar texts in the supported
// display languages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/lunar"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator localizes messages for a single language.
// It is safe for concurrent use once constructed.
type Translator struct {
	Lang      string
	Languages []string

	localizer *goi18n.Localizer
}

// New loads the embedded locale files and returns a Translator for lang.
// Unknown languages fall back to config.DefaultLanguage.
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.MustParse(config.DefaultLanguage))
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	langs := loadLocales(bundle)

	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Translator{
		Lang:      lang,
		Languages: langs,
		localizer: goi18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}
}

// loadLocales registers every active.<lang>.json file and returns the detected languages.
func loadLocales(bundle *goi18n.Bundle) []string {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return nil
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}
	return detected
}

// localize returns the message for key, or "" if it cannot be rendered.
func (t *Translator) localize(key string, data map[string]interface{}) string {
	if t == nil || t.localizer == nil {
		return ""
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return ""
	}
	return msg
}

// Msg translates a key without template data, returning the key itself when missing.
func (t *Translator) Msg(key string) string {
	if msg := t.localize(key, nil); msg != "" {
		return msg
	}
	return key
}

// LunarDate renders d in the translator's language.
// The Vietnamese rendering is identical to d.Display.
func (t *Translator) LunarDate(d lunar.Date) string {
	key := config.TKeyLunarDate
	if d.Leap {
		key = config.TKeyLunarDateLeap
	}
	msg := t.localize(key, map[string]interface{}{
		"Day":    d.Day,
		"Month":  d.Month,
		"CanChi": d.CanChi,
	})
	if msg == "" {
		return d.Display
	}
	return msg
}

// Labelled prefixes the rendered date with the lunar label, e.g. "Âm Lịch: Ngày 1 tháng 1 năm Giáp Thìn".
func (t *Translator) Labelled(d lunar.Date) string {
	return t.Msg(config.TKeyLunarLabel) + ": " + t.LunarDate(d)
}

// Summary builds the birthday event title.
// Age 0 with a known year denotes the birth itself.
func (t *Translator) Summary(name string, age int, yearKnown bool) string {
	var msg string
	switch {
	case yearKnown && age == 0:
		msg = t.localize(config.TKeyEvtSummaryBirth, map[string]interface{}{"Name": name})
	case yearKnown:
		msg = t.localize(config.TKeyEvtSummaryAge, map[string]interface{}{"Name": name, "Age": age})
	default:
		msg = t.localize(config.TKeyEvtSummary, map[string]interface{}{"Name": name})
	}
	if msg != "" {
		return msg
	}

	switch {
	case yearKnown && age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	case yearKnown:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	default:
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}

// LunarBirth describes a lunar birth date for event descriptions.
func (t *Translator) LunarBirth(d lunar.Date) string {
	rendered := t.LunarDate(d)
	if msg := t.localize(config.TKeyEvtLunarBirth, map[string]interface{}{"LunarDate": rendered}); msg != "" {
		return msg
	}
	return fmt.Sprintf(config.FallbackLunarBirth, rendered)
}

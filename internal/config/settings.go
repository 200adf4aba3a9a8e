package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"
)

// Settings holds the user-editable runtime configuration read from YAML.
type Settings struct {
	Port       string   `yaml:"port" validate:"port"`
	Language   string   `yaml:"language" validate:"oneof=vi en"`
	RefreshMin int      `yaml:"refresh_interval_min" validate:"gte=0"`
	Source     Source   `yaml:"source"`
	Reminder   Reminder `yaml:"reminder"`
}

// Source describes where contacts are read from.
// An empty Mode disables synchronization; the calendar stays empty.
type Source struct {
	Mode      string `yaml:"mode" validate:"omitempty,oneof=local web"`
	LocalPath string `yaml:"local_path" validate:"required_if=Mode local"`
	URL       string `yaml:"url" validate:"required_if=Mode web,omitempty,url"`
	User      string `yaml:"user"`

	// Password is only a fallback; the system keyring is consulted first.
	Password string `yaml:"password"`
}

// Reminder configures the VALARM attached to each birthday event.
type Reminder struct {
	Enabled   bool   `yaml:"enabled"`
	Value     int    `yaml:"value" validate:"gte=0"`
	Unit      string `yaml:"unit" validate:"omitempty,oneof=d h m"`
	Direction string `yaml:"direction" validate:"omitempty,oneof=before after"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// Validator returns the shared validator with the project's custom tags registered.
func Validator() *validator.Validate {
	initValidator()
	return validate
}

// ValidationTranslator returns the English translator used for validation messages.
func ValidationTranslator() ut.Translator {
	initValidator()
	return translator
}

func initValidator() {
	validateOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation(TagPort, func(fl validator.FieldLevel) bool {
			return ValidatePort(fl.Field().String()) == nil
		})
		_ = v.RegisterTranslation(TagPort, trans,
			func(t ut.Translator) error {
				return t.Add(TagPort, MsgPortInvalid, true)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(TagPort, fe.Field())
				return msg
			},
		)

		validate, translator = v, trans
	})
}

// fieldName names fields after their query or yaml key in messages.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"query", "yaml"} {
		tag := fld.Tag.Get(key)
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return fld.Name
}

// DescribeValidation renders validator errors as English sentences.
// Other errors are returned unchanged.
func DescribeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(ValidationTranslator()))
	}
	return strings.Join(msgs, "; ")
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Port:       DefaultPort,
		Language:   DefaultLanguage,
		RefreshMin: DefaultRefreshMin,
		Reminder: Reminder{
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

// DefaultSettingsPath returns <user config dir>/<AppID>/settings.yaml.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, SettingsFileName), nil
}

// Load reads settings from path. Fields absent from the file keep their
// defaults and a missing file yields DefaultSettings.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	log := slog.With(LogKeyComponent, CompConfig, LogKeyPath, path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info(MsgSettingsNone)
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	log.Debug(MsgSettingsLoad, LogKeyMode, s.Source.Mode, LogKeyLang, s.Language)
	return s, nil
}

// Validate checks every field against its constraints.
func (s Settings) Validate() error {
	if err := Validator().Struct(s); err != nil {
		return fmt.Errorf("%s: %s", ErrSettingsInvalid, DescribeValidation(err))
	}
	return nil
}

// ValidatePort accepts a decimal TCP port in [MinPort, MaxPort].
func ValidatePort(s string) error {
	if s == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// ReminderTrigger renders the reminder as an ISO8601 duration such as
// "-P1D" or "PT2H", or "" when reminders are disabled.
func (s Settings) ReminderTrigger() string {
	r := s.Reminder
	if !r.Enabled || r.Value <= 0 {
		return ""
	}

	sign := ISOPeriodPrefix
	if r.Direction != DirAfter {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTime, r.Value, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTime, r.Value, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, r.Value, ISODay)
	}
}

package i18n_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-amlich/internal/config"
	"github.com/tartampluch/go-amlich/internal/i18n"
	"github.com/tartampluch/go-amlich/internal/lunar"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeyLunarDate,
		config.TKeyLunarDateLeap,
		config.TKeyLunarLabel,
		config.TKeyEvtSummary,
		config.TKeyEvtSummaryAge,
		config.TKeyEvtSummaryBirth,
		config.TKeyEvtLunarBirth,
		config.TKeyCalName,
	}

	files, err := filepath.Glob(filepath.Join("locales", "active.*.json"))
	require.NoError(t, err)
	require.Len(t, files, len(config.SupportedLanguages), "one locale file per supported language")

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)

			var messages map[string]string
			require.NoError(t, json.Unmarshal(data, &messages))

			for _, key := range keysToCheck {
				assert.NotEmpty(t, messages[key], "missing key %q", key)
			}
		})
	}
}

func TestNew_DetectsLanguages(t *testing.T) {
	tr := i18n.New("")
	assert.Equal(t, config.DefaultLanguage, tr.Lang)
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages)
}

func TestLunarDate_VietnameseMatchesDisplay(t *testing.T) {
	tr := i18n.New("vi")

	for _, solar := range [][3]int{{15, 5, 1990}, {30, 5, 2020}, {17, 2, 2026}} {
		d, err := lunar.Convert(solar[0], solar[1], solar[2])
		require.NoError(t, err)
		assert.Equal(t, d.Display, tr.LunarDate(d))
	}
}

func TestLunarDate_English(t *testing.T) {
	tr := i18n.New("en")

	d, err := lunar.Convert(15, 5, 1990)
	require.NoError(t, err)
	assert.Equal(t, "Day 21 of month 4, year Canh Ngọ", tr.LunarDate(d))
	assert.Equal(t, "Lunar: Day 21 of month 4, year Canh Ngọ", tr.Labelled(d))

	leap, err := lunar.Convert(30, 5, 2020)
	require.NoError(t, err)
	assert.Equal(t, "Day 8 of leap month 4, year Canh Tý", tr.LunarDate(leap))
}

func TestUnknownLanguageFallsBack(t *testing.T) {
	tr := i18n.New("fr")
	assert.Equal(t, "Âm Lịch", tr.Msg(config.TKeyLunarLabel))
	assert.Equal(t, "missing_key", tr.Msg("missing_key"))
}

func TestSummary(t *testing.T) {
	en := i18n.New("en")
	assert.Equal(t, "Birthday: Lan", en.Summary("Lan", 0, false))
	assert.Equal(t, "Birthday: Lan (34)", en.Summary("Lan", 34, true))
	assert.Equal(t, "Birthday: Lan (birth)", en.Summary("Lan", 0, true))

	vi := i18n.New("vi")
	assert.Equal(t, "Sinh nhật Lan (34 tuổi)", vi.Summary("Lan", 34, true))
}

func TestLunarBirth(t *testing.T) {
	d, err := lunar.Convert(15, 5, 1990)
	require.NoError(t, err)

	vi := i18n.New("vi")
	assert.Equal(t, "Ngày sinh Âm Lịch: Ngày 21 tháng 4 năm Canh Ngọ", vi.LunarBirth(d))

	var nilTr *i18n.Translator
	assert.True(t, strings.HasPrefix(nilTr.LunarBirth(d), "Lunar birth date: "), "nil translator must use fallbacks")
	assert.Equal(t, "Birthday: Lan (3)", nilTr.Summary("Lan", 3, true))
}

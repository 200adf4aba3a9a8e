package lunar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-amlich/internal/lunar"
)

// TestConvert_KnownDates checks conversions against published Vietnamese
// lunar calendar tables.
func TestConvert_KnownDates(t *testing.T) {
	tests := []struct {
		name               string
		day, month, year   int
		wantDay, wantMonth int
		wantYear           int
		wantLeap           bool
		wantCanChi         string
	}{
		{"Epoch: Tet Canh Ty", 31, 1, 1900, 1, 1, 1900, false, "Canh Tý"},
		{"First day of 1901", 1, 1, 1901, 11, 11, 1900, false, "Canh Tý"},
		{"Eve of Tet 1990", 26, 1, 1990, 30, 12, 1989, false, "Kỷ Tỵ"},
		{"Tet 1990", 27, 1, 1990, 1, 1, 1990, false, "Canh Ngọ"},
		{"Mid May 1990", 15, 5, 1990, 21, 4, 1990, false, "Canh Ngọ"},
		{"Leap fifth month 1990", 23, 6, 1990, 1, 5, 1990, true, "Canh Ngọ"},
		{"Millennium", 1, 1, 2000, 25, 11, 1999, false, "Kỷ Mão"},
		{"Leap day 2000", 29, 2, 2000, 25, 1, 2000, false, "Canh Thìn"},
		{"Leap fourth month 2020", 23, 5, 2020, 1, 4, 2020, true, "Canh Tý"},
		{"Fifth month 2020", 23, 6, 2020, 3, 5, 2020, false, "Canh Tý"},
		{"Leap second month 2023", 22, 3, 2023, 1, 2, 2023, true, "Quý Mão"},
		{"Tet 2024", 10, 2, 2024, 1, 1, 2024, false, "Giáp Thìn"},
		{"Leap sixth month 2025", 25, 7, 2025, 1, 6, 2025, true, "Ất Tỵ"},
		{"Eve of Tet 2026", 16, 2, 2026, 29, 12, 2025, false, "Ất Tỵ"},
		{"Tet 2026", 17, 2, 2026, 1, 1, 2026, false, "Bính Ngọ"},
		{"Last supported day", 31, 12, 2100, 1, 12, 2100, false, "Canh Thân"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lunar.Convert(tt.day, tt.month, tt.year)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDay, got.Day, "lunar day")
			assert.Equal(t, tt.wantMonth, got.Month, "lunar month")
			assert.Equal(t, tt.wantYear, got.Year, "lunar year")
			assert.Equal(t, tt.wantLeap, got.Leap, "leap flag")
			assert.Equal(t, tt.wantCanChi, got.CanChi)
		})
	}
}

func TestConvert_Display(t *testing.T) {
	d, err := lunar.Convert(15, 5, 1990)
	require.NoError(t, err)
	assert.Equal(t, "Ngày 21 tháng 4 năm Canh Ngọ", d.Display)
	assert.Equal(t, d.Display, d.String())

	leap, err := lunar.Convert(30, 5, 2020)
	require.NoError(t, err)
	assert.Equal(t, "Ngày 8 tháng 4 năm Canh Tý (Nhuận)", leap.Display)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name             string
		day, month, year int
		wantErr          error
	}{
		{"April 31st", 31, 4, 2024, lunar.ErrInvalidDate},
		{"Feb 29 in a common year", 29, 2, 2023, lunar.ErrInvalidDate},
		{"Feb 29 1900 (century)", 29, 2, 1900, lunar.ErrInvalidDate},
		{"Month 13", 1, 13, 2000, lunar.ErrInvalidDate},
		{"Month 0", 1, 0, 2000, lunar.ErrInvalidDate},
		{"Day 0", 0, 1, 2000, lunar.ErrInvalidDate},
		{"Before lunar new year 1900", 30, 1, 1900, lunar.ErrOutOfRange},
		{"First of January 1900", 1, 1, 1900, lunar.ErrOutOfRange},
		{"Nineteenth century", 15, 6, 1899, lunar.ErrOutOfRange},
		{"Twenty-second century", 1, 1, 2101, lunar.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lunar.Convert(tt.day, tt.month, tt.year)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, lunar.Date{}, got, "a failed conversion must not return partial data")
		})
	}
}

// TestConvert_Deterministic verifies repeated calls return identical values.
func TestConvert_Deterministic(t *testing.T) {
	first, err := lunar.Convert(2, 9, 1945)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := lunar.Convert(2, 9, 1945)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// TestConvert_FullRangeWalk steps through every supported solar day and checks
// that consecutive days map to consecutive lunar days. This covers
// monotonicity, year lengths and leap month placement in one pass.
func TestConvert_FullRangeWalk(t *testing.T) {
	start := time.Date(lunar.BaseYear, time.January, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(lunar.LastYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	prev, err := lunar.FromTime(start)
	require.NoError(t, err)
	require.Equal(t, lunar.Date{Day: 1, Month: 1, Year: 1900, Leap: false, CanChi: "Canh Tý", Display: "Ngày 1 tháng 1 năm Canh Tý"}, prev)

	newYears := map[int]int{1900: lunar.JulianDayNumber(31, 1, 1900)}
	leapSeen := map[int]bool{}

	for day := start.AddDate(0, 0, 1); !day.After(end); day = day.AddDate(0, 0, 1) {
		cur, err := lunar.FromTime(day)
		require.NoError(t, err, day.Format(time.DateOnly))
		require.True(t, prev.Before(cur), "not increasing at %s", day.Format(time.DateOnly))

		if cur.Day != 1 {
			require.Equal(t, prev.Day+1, cur.Day, day.Format(time.DateOnly))
			require.Equal(t, prev.Month, cur.Month, day.Format(time.DateOnly))
			require.Equal(t, prev.Leap, cur.Leap, day.Format(time.DateOnly))
		} else {
			info, err := lunar.YearInfo(prev.Year)
			require.NoError(t, err)

			// The month that just ended must have had its tabulated length.
			wantLen := info.MonthDays[prev.Month-1]
			if prev.Leap {
				wantLen = info.LeapDays
			}
			require.Equal(t, wantLen, prev.Day, "month length at %s", day.Format(time.DateOnly))

			switch {
			case cur.Leap:
				require.Equal(t, info.LeapMonth, cur.Month)
				require.Equal(t, prev.Month, cur.Month, "leap month must follow its regular month")
				require.False(t, prev.Leap)
				leapSeen[cur.Year] = true
			case cur.Month == 1:
				require.Equal(t, prev.Year+1, cur.Year)
				require.Equal(t, 12, prev.Month)
				newYears[cur.Year] = lunar.JulianDayNumber(day.Day(), int(day.Month()), day.Year())
			default:
				require.Equal(t, prev.Month+1, cur.Month)
			}
		}
		prev = cur
	}

	for y := lunar.BaseYear; y < lunar.LastYear; y++ {
		info, err := lunar.YearInfo(y)
		require.NoError(t, err)
		assert.Equal(t, info.TotalDays, newYears[y+1]-newYears[y], "length of lunar year %d", y)
		assert.Equal(t, info.LeapMonth > 0, leapSeen[y], "leap month presence in %d", y)
	}
}

func TestYearInfo(t *testing.T) {
	info, err := lunar.YearInfo(2020)
	require.NoError(t, err)
	assert.Equal(t, 4, info.LeapMonth)
	assert.Equal(t, 29, info.LeapDays)
	assert.Equal(t, 384, info.TotalDays)
	assert.Equal(t, "Canh Tý", info.CanChi)

	sum := info.LeapDays
	for _, n := range info.MonthDays {
		assert.Contains(t, []int{29, 30}, n)
		sum += n
	}
	assert.Equal(t, info.TotalDays, sum)

	common, err := lunar.YearInfo(2100)
	require.NoError(t, err)
	assert.Zero(t, common.LeapMonth)
	assert.Zero(t, common.LeapDays)
	assert.Equal(t, 354, common.TotalDays)

	_, err = lunar.YearInfo(1899)
	assert.ErrorIs(t, err, lunar.ErrOutOfRange)
	_, err = lunar.YearInfo(2101)
	assert.ErrorIs(t, err, lunar.ErrOutOfRange)
}

func TestDate_Compare(t *testing.T) {
	regular := lunar.Date{Day: 29, Month: 4, Year: 2020}
	leap := lunar.Date{Day: 1, Month: 4, Year: 2020, Leap: true}
	next := lunar.Date{Day: 1, Month: 5, Year: 2020}

	assert.Equal(t, -1, regular.Compare(leap))
	assert.Equal(t, 1, leap.Compare(regular))
	assert.True(t, leap.Before(next))
	assert.Equal(t, 0, next.Compare(next))
	assert.True(t, next.Before(lunar.Date{Day: 1, Month: 1, Year: 2021}))
}

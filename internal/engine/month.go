package engine

import (
	"fmt"

	"github.com/tartampluch/go-amlich/internal/lunar"
)

// DayEntry pairs a solar date with its lunar date.
type DayEntry struct {
	Day   int        `json:"day"`
	Month int        `json:"month"`
	Year  int        `json:"year"`
	Lunar lunar.Date `json:"lunar"`
}

// MonthTable converts every day of a solar month.
// The whole month fails if any day is out of range, e.g. January 1900.
func MonthTable(month, year int) ([]DayEntry, error) {
	n := lunar.DaysInMonth(month, year)
	if n == 0 {
		return nil, fmt.Errorf("%w: month %d", lunar.ErrInvalidDate, month)
	}

	days := make([]DayEntry, 0, n)
	for d := 1; d <= n; d++ {
		ld, err := lunar.Convert(d, month, year)
		if err != nil {
			return nil, err
		}
		days = append(days, DayEntry{Day: d, Month: month, Year: year, Lunar: ld})
	}
	return days, nil
}

package lunar

import (
	"fmt"
	"time"
)

const (
	displayFormat = "Ngày %d tháng %d năm %s"
	displayLeap   = " (Nhuận)"
)

// Date is the result of a solar to lunar conversion.
// It is a plain value; two Dates with equal fields are the same date.
type Date struct {
	Day   int  `json:"lunarDay"`
	Month int  `json:"lunarMonth"`
	Year  int  `json:"lunarYear"`
	Leap  bool `json:"isLeapMonth"`

	// CanChi is the Stem-Branch name of the lunar year.
	CanChi string `json:"canChiYear"`

	// Display is the pre-formatted Vietnamese rendering,
	// e.g. "Ngày 21 tháng 4 năm Canh Ngọ".
	Display string `json:"display"`
}

func newDate(day, month, year int, leap bool) Date {
	canChi := CanChiYear(year)
	display := fmt.Sprintf(displayFormat, day, month, canChi)
	if leap {
		display += displayLeap
	}
	return Date{
		Day:     day,
		Month:   month,
		Year:    year,
		Leap:    leap,
		CanChi:  canChi,
		Display: display,
	}
}

// FromTime converts the calendar date of t, read in t's own location.
func FromTime(t time.Time) (Date, error) {
	y, m, d := t.Date()
	return Convert(d, int(m), y)
}

// String returns the display rendering.
func (d Date) String() string {
	return d.Display
}

// Compare orders lunar dates by year, month, leap flag (the leap month comes
// after the regular month of the same number) and day.
// It returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(d.Month - o.Month)
	case d.Leap != o.Leap:
		if d.Leap {
			return 1
		}
		return -1
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d comes strictly before o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Package lunar converts Gregorian dates into the traditional Vietnamese
// (East-Asian) lunar calendar for the years 1900 to 2100.
//
// Conversion is table driven: each lunar year is described by one packed
// record (see yearInfo) and no astronomical computation takes place.
// Every function in this package is pure and safe for concurrent use.
package lunar

import (
	"errors"
	"fmt"
	"math/bits"
)

const (
	// BaseYear is the first lunar year described by the table.
	BaseYear = 1900

	// LastYear is the last lunar year described by the table.
	LastYear = 2100

	// EpochJDN is the Julian Day Number of 31 January 1900,
	// the first day of lunar year 1900.
	EpochJDN = 2415051

	monthsPerYear = 12
	shortMonth    = 29
	longMonth     = 30

	leapMonthMask = 0xf
	leapDaysBit   = 0x10000
	firstMonthBit = 0x8000
)

var (
	// ErrInvalidDate reports a day/month/year triple that is not a Gregorian date.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrOutOfRange reports a date outside the tabulated lunar years.
	ErrOutOfRange = errors.New("date outside supported range 1900-2100")
)

// record is a single packed entry of the year table.
type record uint32

func recordFor(year int) record {
	return record(yearInfo[year-BaseYear])
}

func (r record) leapMonth() int {
	return int(r & leapMonthMask)
}

// monthDays returns the length of regular month m (1-12).
func (r record) monthDays(m int) int {
	if r&(firstMonthBit>>uint(m-1)) != 0 {
		return longMonth
	}
	return shortMonth
}

// leapDays returns the length of the leap month, or 0 when the year has none.
func (r record) leapDays() int {
	if r.leapMonth() == 0 {
		return 0
	}
	if r&leapDaysBit != 0 {
		return longMonth
	}
	return shortMonth
}

func (r record) totalDays() int {
	longMonths := bits.OnesCount32(uint32(r) & 0xfff0)
	return monthsPerYear*shortMonth + longMonths + r.leapDays()
}

// Year is the decoded form of a lunar year record.
type Year struct {
	Year      int                `json:"year"`
	LeapMonth int                `json:"leapMonth"`
	LeapDays  int                `json:"leapDays"`
	MonthDays [monthsPerYear]int `json:"monthDays"`
	TotalDays int                `json:"totalDays"`
	CanChi    string             `json:"canChi"`
}

// YearInfo decodes the table record of lunar year y.
func YearInfo(y int) (Year, error) {
	if y < BaseYear || y > LastYear {
		return Year{}, fmt.Errorf("%w: lunar year %d", ErrOutOfRange, y)
	}
	r := recordFor(y)
	info := Year{
		Year:      y,
		LeapMonth: r.leapMonth(),
		LeapDays:  r.leapDays(),
		TotalDays: r.totalDays(),
		CanChi:    CanChiYear(y),
	}
	for m := 1; m <= monthsPerYear; m++ {
		info.MonthDays[m-1] = r.monthDays(m)
	}
	return info, nil
}

// Convert returns the lunar date of the Gregorian date day/month/year.
//
// It fails with ErrInvalidDate when the input is not a real Gregorian date
// and with ErrOutOfRange when it falls before lunar New Year 1900
// (31 January 1900) or after the end of lunar year 2100.
func Convert(day, month, year int) (Date, error) {
	if month < 1 || month > monthsPerYear || day < 1 || day > DaysInMonth(month, year) {
		return Date{}, fmt.Errorf("%w: %02d/%02d/%d", ErrInvalidDate, day, month, year)
	}
	if year < BaseYear || year > LastYear {
		return Date{}, fmt.Errorf("%w: solar year %d", ErrOutOfRange, year)
	}

	offset := JulianDayNumber(day, month, year) - EpochJDN
	if offset < 0 {
		return Date{}, fmt.Errorf("%w: %02d/%02d/%d precedes lunar new year %d", ErrOutOfRange, day, month, year, BaseYear)
	}

	// Locate the lunar year.
	ly := BaseYear
	for {
		if ly > LastYear {
			return Date{}, fmt.Errorf("%w: %02d/%02d/%d is past lunar year %d", ErrOutOfRange, day, month, year, LastYear)
		}
		total := recordFor(ly).totalDays()
		if offset < total {
			break
		}
		offset -= total
		ly++
	}

	// Locate the month; the leap month follows its regular namesake.
	r := recordFor(ly)
	leap := r.leapMonth()
	for m := 1; m <= monthsPerYear; m++ {
		n := r.monthDays(m)
		if offset < n {
			return newDate(offset+1, m, ly, false), nil
		}
		offset -= n

		if leap == m {
			n = r.leapDays()
			if offset < n {
				return newDate(offset+1, m, ly, true), nil
			}
			offset -= n
		}
	}

	// offset < totalDays guarantees the month loop returns.
	return Date{}, fmt.Errorf("%w: corrupt record for lunar year %d", ErrOutOfRange, ly)
}

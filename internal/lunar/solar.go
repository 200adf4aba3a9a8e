package lunar

// JulianDayNumber returns the Julian Day Number of a Gregorian date.
// It performs no validation.
func JulianDayNumber(day, month, year int) int {
	a := floorDiv(14-month, 12)
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + floorDiv(153*m+2, 5) + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the number of days of a Gregorian month,
// or 0 when month is not in 1-12.
func DaysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

// ClampDay pulls a previously selected day into the valid range of
// month/year, e.g. 31 becomes 29 when switching to February 2024.
func ClampDay(day, month, year int) int {
	if day < 1 {
		return 1
	}
	if n := DaysInMonth(month, year); n > 0 && day > n {
		return n
	}
	return day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

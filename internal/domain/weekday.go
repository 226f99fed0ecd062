package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// weekdayTokens maps the Dutch weekday abbreviations accepted by spec §4.1
// to the 1..7 (Monday=1) numbering used throughout the domain.
var weekdayTokens = map[string]int{
	"ma": 1,
	"di": 2,
	"wo": 3,
	"do": 4,
	"vr": 5,
	"za": 6,
	"zo": 7,
}

// ParseWeekday accepts either an integer 1..7 (Monday=1) or one of the
// tokens ma, di, wo, do, vr, za, zo.
func ParseWeekday(raw string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return 0, fmt.Errorf("weekday is empty")
	}
	if token, ok := weekdayTokens[trimmed]; ok {
		return token, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid weekday %q", raw)
	}
	if n < 1 || n > 7 {
		return 0, fmt.Errorf("weekday %d out of range 1..7", n)
	}
	return n, nil
}

// WeekOfMonth buckets a day-of-month into 1..5 per spec §3: days 1-7 -> 1,
// 8-14 -> 2, 15-21 -> 3, 22-28 -> 4, 29-31 -> 5.
func WeekOfMonth(dayOfMonth int) int {
	return (dayOfMonth-1)/7 + 1
}

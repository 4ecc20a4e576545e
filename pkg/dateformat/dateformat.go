// Package dateformat translates the user-facing date patterns (dd-MM-yyyy and friends) into Go
// layouts and parses or formats values with them.
package dateformat

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DayMonthYearDash  = "dd-MM-yyyy"
	MonthDayYearSlash = "MM/dd/yyyy"
	ISODate           = "yyyy-MM-dd"
	DayMonthYearSlash = "dd/MM/yyyy"

	Default = DayMonthYearDash
)

// Vocabulary is the closed set of formats a caller may pick for input or output.
var Vocabulary = []string{
	MonthDayYearSlash,
	DayMonthYearDash,
	ISODate,
	DayMonthYearSlash,
}

// Candidates are tried in order when sniffing whether a value looks like a date.
var Candidates = []string{
	DayMonthYearDash,
	MonthDayYearSlash,
	ISODate,
	DayMonthYearSlash,
}

type unit int

const (
	unitYear unit = iota
	unitShortYear
	unitMonth
	unitDay
	unitHour
	unitMinute
	unitSecond
)

// tokens are matched longest first at every position. layout is used for formatting; parsing
// reads between minDigits and maxDigits digits.
var tokens = []struct {
	pattern   string
	layout    string
	unit      unit
	minDigits int
	maxDigits int
}{
	{"yyyy", "2006", unitYear, 1, 4},
	{"yy", "06", unitShortYear, 2, 2},
	{"MM", "01", unitMonth, 1, 2},
	{"M", "1", unitMonth, 1, 2},
	{"dd", "02", unitDay, 1, 2},
	{"d", "2", unitDay, 1, 2},
	{"HH", "15", unitHour, 1, 2},
	{"mm", "04", unitMinute, 1, 2},
	{"ss", "05", unitSecond, 1, 2},
}

// part is either a literal run or a reference into tokens.
type part struct {
	literal string
	token   int
}

type compiled struct {
	layout string
	parts  []part
}

var (
	layoutCache = map[string]compiled{}
	layoutMu    sync.RWMutex
)

func compile(pattern string) (compiled, error) {
	layoutMu.RLock()
	c, ok := layoutCache[pattern]
	layoutMu.RUnlock()
	if ok {
		return c, nil
	}

	if pattern == "" {
		return compiled{}, fmt.Errorf("date format is empty")
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for idx, token := range tokens {
			if strings.HasPrefix(pattern[i:], token.pattern) {
				b.WriteString(token.layout)
				c.parts = append(c.parts, part{token: idx})
				i += len(token.pattern)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		ch := pattern[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return compiled{}, fmt.Errorf("unsupported token %q in date format %q", ch, pattern)
		}
		b.WriteByte(ch)
		if n := len(c.parts); n > 0 && c.parts[n-1].token < 0 {
			c.parts[n-1].literal += pattern[i : i+1]
		} else {
			c.parts = append(c.parts, part{literal: pattern[i : i+1], token: -1})
		}
		i++
	}

	c.layout = b.String()
	layoutMu.Lock()
	layoutCache[pattern] = c
	layoutMu.Unlock()

	return c, nil
}

// Layout converts a pattern to a zero-padded Go reference layout, used when formatting.
func Layout(pattern string) (string, error) {
	c, err := compile(pattern)
	if err != nil {
		return "", err
	}
	return c.layout, nil
}

// Parse parses value under pattern. Month, day and time fields take one or two digits and the
// four-letter year takes one to four, so 1/5/2024 matches MM/dd/yyyy. Literals must match exactly,
// nothing may trail the value, and impossible calendar dates are rejected.
func Parse(pattern, value string) (time.Time, error) {
	c, err := compile(pattern)
	if err != nil {
		return time.Time{}, err
	}
	mismatch := fmt.Errorf("value %q does not match date format %q", value, pattern)

	year, month, day := 0, 1, 1
	var hour, minute, second int

	rest := value
	for _, p := range c.parts {
		if p.token < 0 {
			if !strings.HasPrefix(rest, p.literal) {
				return time.Time{}, mismatch
			}
			rest = rest[len(p.literal):]
			continue
		}

		token := tokens[p.token]
		n := 0
		for n < token.maxDigits && n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n < token.minDigits {
			return time.Time{}, mismatch
		}
		num, _ := strconv.Atoi(rest[:n])
		rest = rest[n:]

		switch token.unit {
		case unitYear:
			year = num
		case unitShortYear:
			// same pivot as time.Parse
			if num >= 69 {
				year = 1900 + num
			} else {
				year = 2000 + num
			}
		case unitMonth:
			month = num
		case unitDay:
			day = num
		case unitHour:
			hour = num
		case unitMinute:
			minute = num
		case unitSecond:
			second = num
		}
	}
	if rest != "" {
		return time.Time{}, mismatch
	}

	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) ||
		hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, mismatch
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func Format(pattern string, t time.Time) (string, error) {
	layout, err := Layout(pattern)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// Reformat parses value under input and renders it under output.
func Reformat(value, input, output string) (string, error) {
	parsed, err := Parse(input, value)
	if err != nil {
		return "", err
	}
	return Format(output, parsed)
}

// IsLikelyDate reports whether value parses under any candidate format.
func IsLikelyDate(value string) bool {
	_, ok := Sniff(value)
	return ok
}

// Sniff returns the first candidate format value parses under.
func Sniff(value string) (string, bool) {
	for _, pattern := range Candidates {
		if _, err := Parse(pattern, value); err == nil {
			return pattern, true
		}
	}
	return "", false
}

// IsSupported reports whether pattern is one of the Vocabulary formats.
func IsSupported(pattern string) bool {
	for _, candidate := range Vocabulary {
		if candidate == pattern {
			return true
		}
	}
	return false
}

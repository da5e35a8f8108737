// pkg/astro/sexagesimal.go

// Package astro parses and converts sky coordinates.
package astro

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ParseError reports a malformed sexagesimal string
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("input is not a valid sexagesimal string: %q (%s)", e.Input, e.Reason)
}

var sexagesimalRe = regexp.MustCompile(`^([+-])?(\d{1,3}):(\d{2}):(\d{2}(?:\.\d+)?)$`)

// Sexagesimal is a parsed "[+-]DD:MM:SS.sss" value
type Sexagesimal struct {
	Negative bool
	Whole    int
	Minutes  int
	Seconds  float64
}

// ParseSexagesimal parses s strictly; nothing is guessed or clamped
func ParseSexagesimal(s string) (Sexagesimal, error) {
	m := sexagesimalRe.FindStringSubmatch(s)
	if m == nil {
		return Sexagesimal{}, &ParseError{Input: s, Reason: "expected [+-]DD:MM:SS[.sss]"}
	}

	whole, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	seconds, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Sexagesimal{}, &ParseError{Input: s, Reason: err.Error()}
	}
	if minutes >= 60 {
		return Sexagesimal{}, &ParseError{Input: s, Reason: "minutes out of range"}
	}
	if seconds >= 60 {
		return Sexagesimal{}, &ParseError{Input: s, Reason: "seconds out of range"}
	}

	return Sexagesimal{
		Negative: m[1] == "-",
		Whole:    whole,
		Minutes:  minutes,
		Seconds:  seconds,
	}, nil
}

// Value returns the value in units of the leading component
func (s Sexagesimal) Value() float64 {
	v := float64(s.Whole) + float64(s.Minutes)/60 + s.Seconds/3600
	if s.Negative {
		return -v
	}
	return v
}

// Packed returns the value in the packed DDMMSS.ssss form used by the
// survey's header tables, e.g. 19:07:28.4 becomes 190728.4
func (s Sexagesimal) Packed() float64 {
	v := float64(s.Whole)*10000 + float64(s.Minutes)*100 + s.Seconds
	if s.Negative {
		return -v
	}
	return v
}

// ParseRA parses a right ascension in hours ("HH:MM:SS.sss") and returns
// the packed value and degrees
func ParseRA(s string) (packed, deg float64, err error) {
	v, err := ParseSexagesimal(s)
	if err != nil {
		return 0, 0, err
	}
	if v.Negative || v.Whole >= 24 {
		return 0, 0, &ParseError{Input: s, Reason: "hours out of range"}
	}
	return v.Packed(), v.Value() * 15, nil
}

// ParseDec parses a declination in degrees ("+DD:MM:SS.sss") and returns
// the packed value and degrees
func ParseDec(s string) (packed, deg float64, err error) {
	v, err := ParseSexagesimal(s)
	if err != nil {
		return 0, 0, err
	}
	if math.Abs(v.Value()) > 90 {
		return 0, 0, &ParseError{Input: s, Reason: "declination out of range"}
	}
	return v.Packed(), v.Value(), nil
}

package campus

import (
	"fmt"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerWeek   = 604800
	// 365.25 / 12 days and 365.25 days.
	secondsPerMonth = 2629746
	secondsPerYear  = 31556952
)

// Locale holds the labels used for relative times and author descriptors.
// Plural forms fall back to the singular one when empty.
type Locale struct {
	JustNow string
	Seconds string
	Minutes string
	Hours   string
	Day     string
	Days    string
	Week    string
	Weeks   string
	Month   string
	Months  string
	Year    string
	Years   string

	Student   string
	Teacher   string
	Staff     string
	Anonymous string
}

var English = &Locale{
	JustNow:   "just now",
	Seconds:   "%d sec ago",
	Minutes:   "%d min ago",
	Hours:     "%d hr ago",
	Day:       "%d day ago",
	Days:      "%d days ago",
	Week:      "%d week ago",
	Weeks:     "%d weeks ago",
	Month:     "%d month ago",
	Months:    "%d months ago",
	Year:      "%d year ago",
	Years:     "%d years ago",
	Student:   "Grade %d",
	Teacher:   "Faculty",
	Staff:     "Staff",
	Anonymous: "User",
}

var Korean = &Locale{
	JustNow:   "방금 전",
	Seconds:   "%d초전",
	Minutes:   "%d분전",
	Hours:     "%d시간전",
	Day:       "%d일전",
	Week:      "%d주전",
	Month:     "%d달전",
	Year:      "%d년전",
	Student:   "%d학년",
	Teacher:   "교직원",
	Staff:     "직원",
	Anonymous: "사용자",
}

var locales = map[string]*Locale{
	"en": English,
	"ko": Korean,
}

// GetLocale returns the locale for lang, defaulting to English.
func GetLocale(lang string) *Locale {
	if l, ok := locales[lang]; ok {
		return l
	}
	return English
}

// RelativeTime formats how long ago t was, seen from now. A zero t stands
// for a timestamp that could not be parsed.
func (l *Locale) RelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return l.JustNow
	}
	diff := int64(now.Sub(t) / time.Second)
	switch {
	case diff <= 0:
		return l.JustNow
	case diff < secondsPerMinute:
		return fmt.Sprintf(l.Seconds, diff)
	case diff < secondsPerHour:
		return fmt.Sprintf(l.Minutes, diff/secondsPerMinute)
	case diff < secondsPerDay:
		return fmt.Sprintf(l.Hours, diff/secondsPerHour)
	case diff < secondsPerWeek:
		return l.plural(l.Day, l.Days, diff/secondsPerDay)
	case diff < secondsPerMonth:
		return l.plural(l.Week, l.Weeks, diff/secondsPerWeek)
	case diff < secondsPerYear:
		return l.plural(l.Month, l.Months, diff/secondsPerMonth)
	}
	return l.plural(l.Year, l.Years, diff/secondsPerYear)
}

// ParseRelativeTime is RelativeTime for raw timestamps. Anything that is
// not RFC 3339 reads as "just now".
func (l *Locale) ParseRelativeTime(now time.Time, raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return l.JustNow
	}
	return l.RelativeTime(now, t)
}

func (l *Locale) plural(one, many string, n int64) string {
	if n != 1 && many != "" {
		return fmt.Sprintf(many, n)
	}
	return fmt.Sprintf(one, n)
}

// Author describes a poster by role and grade, never by identity.
func (l *Locale) Author(userType string, grade *int) string {
	switch userType {
	case UserStudent:
		if grade == nil {
			return l.Anonymous
		}
		return fmt.Sprintf(l.Student, *grade)
	case UserTeacher:
		return l.Teacher
	case UserStaff:
		return l.Staff
	}
	return l.Anonymous
}


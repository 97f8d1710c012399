package timeutil

import (
	"time"
)

// JST is the Japan Standard Time location (UTC+9)
var JST *time.Location

func init() {
	var err error
	JST, err = time.LoadLocation("Asia/Tokyo")
	if err != nil {
		// Fallback: create fixed zone if Asia/Tokyo not available
		JST = time.FixedZone("JST", 9*60*60)
	}
}

// Now returns the current time in JST
func Now() time.Time {
	return time.Now().In(JST)
}

// EndOfNextMonth returns the last day of the month following t, in JST
func EndOfNextMonth(t time.Time) time.Time {
	j := t.In(JST)
	// Day 0 of month+2 normalizes to the last day of month+1
	return time.Date(j.Year(), j.Month()+2, 0, 0, 0, 0, 0, JST)
}

// FormatDate renders t in JST with the given layout
func FormatDate(t time.Time, layout string) string {
	return t.In(JST).Format(layout)
}

// Common layouts for JST formatting
const (
	JapaneseDateLayout = "2006年1月2日"
	EnglishDateLayout  = "January 2, 2006"
	ISODateLayout      = "2006-01-02"
)

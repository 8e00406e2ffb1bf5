package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label turns an enum value like "very_low" into "Very Low".
func Label[S ~string](v S) string {
	s := strings.ReplaceAll(string(v), "_", " ")
	if s == "" {
		return ""
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(s)
}

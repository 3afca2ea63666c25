package common

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleLabels labels each value in title case, "in_progress" -> "In Progress".
func TitleLabels[T ~string](vals []T) []Label {
	// a Caser is stateful, so each call gets its own
	caser := cases.Title(language.English)
	out := make([]Label, 0, len(vals))
	for _, v := range vals {
		out = append(out, Label{Value: string(v), Label: caser.String(strings.ReplaceAll(string(v), "_", " "))})
	}
	return out
}

// UpperLabels labels each value in upper case.
func UpperLabels[T ~string](vals []T) []Label {
	caser := cases.Upper(language.English)
	out := make([]Label, 0, len(vals))
	for _, v := range vals {
		out = append(out, Label{Value: string(v), Label: caser.String(string(v))})
	}
	return out
}

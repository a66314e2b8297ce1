package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans user supplied text (validation comments, names) of HTML to
// prevent XSS when surfaced in the UI.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// Package chargeback turns filtered work orders into priced chargeback
// entries and combines them into the monthly report.
package chargeback

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// ExtractEmails returns the distinct email addresses in text, compared
// case-insensitively, in order of first appearance.
func ExtractEmails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	return lo.UniqBy(matches, strings.ToLower)
}

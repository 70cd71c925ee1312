package pdf

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"simcoe_portal/internal/quotes/domain"
)

// Filename names the invoice download after the client, falling back to
// the quote id and date when no client name is set.
func Filename(quote domain.Quote, now time.Time) string {
	if slugged := slug(quote.ClientName()); slugged != "" {
		return slugged + "-quote.pdf"
	}
	return fmt.Sprintf("quote-%s-%s.pdf", quote.ID, now.Format("2006-01-02"))
}

// slug lowercases and keeps letters and digits, collapsing everything
// else into single hyphens.
func slug(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

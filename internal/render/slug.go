package render

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonechelon/matchfly-pseo/internal/models"
)

var (
	slugDropRe     = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
)

// Slugify lowercases text, strips diacritics and collapses separator runs into
// single hyphens.
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = slugDropRe.ReplaceAllString(folded, "")
	folded = slugCollapseRe.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// statusSlug maps a status to the page name fragment readers search for.
func statusSlug(status models.Status) string {
	switch status {
	case models.StatusDelayed:
		return "atrasado"
	case models.StatusCancelled:
		return "cancelado"
	default:
		return "problema"
	}
}

// SlugFor derives the artifact file name for a record. The same record always
// produces the same slug, so reruns overwrite rather than accumulate.
func SlugFor(rec models.FlightRecord) string {
	parts := []string{
		"voo",
		Slugify(rec.AirlineName),
		strings.ToLower(strings.TrimSpace(rec.FlightNumber)),
		strings.ToLower(strings.TrimSpace(rec.Origin)),
		statusSlug(rec.Status),
	}
	return strings.Join(parts, "-") + ".html"
}

package resolver

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases a name and strips diacritical marks, so that
// "noum" matches "Nouméa". Idempotent: normalizing twice changes nothing.
func NormalizeName(s string) string {
	result, _, err := transform.String(stripAccents, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		// Transform failures only happen on invalid UTF-8; fall back to the
		// lowercased input so the query still has a chance to match.
		return strings.ToLower(strings.TrimSpace(s))
	}
	return result
}

// ResolveByName returns the first region in dataset order whose normalized
// name contains the normalized query as a substring. The scan short-circuits
// on the first hit; there is no "best match" ranking. A nil result with nil
// error means no match, which the caller reports, not an error.
func (r *Resolver) ResolveByName(ctx context.Context, query string) (*models.Region, error) {
	regions, err := r.provider.Regions()
	if err != nil {
		return nil, err
	}

	needle := NormalizeName(query)
	if needle == "" {
		return nil, nil
	}

	for i := range regions {
		if strings.Contains(NormalizeName(regions[i].Name), needle) {
			return &regions[i], nil
		}
	}

	return nil, nil
}

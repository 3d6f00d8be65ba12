package dashboard

import (
	"strings"

	"github.com/david/licita-radar/internal/models"
)

// NormalizeQuery trims and case-folds free-text search input.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Filter keeps the rows whose id, title and buyer, concatenated and
// case-folded, contain the query. An empty query yields a copy of all in
// the same order.
func Filter(all []models.Opportunity, query string) []models.Opportunity {
	q := NormalizeQuery(query)
	if q == "" {
		out := make([]models.Opportunity, len(all))
		copy(out, all)
		return out
	}

	out := make([]models.Opportunity, 0, len(all))
	for _, o := range all {
		if strings.Contains(searchText(o), q) {
			out = append(out, o)
		}
	}
	return out
}

func searchText(o models.Opportunity) string {
	return strings.ToLower(o.ID + o.Title + o.Buyer)
}

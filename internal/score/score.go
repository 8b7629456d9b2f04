// Package score ranks article text against the luxury jewellery keyword
// taxonomy. Scoring is pure: same input, same output, no shared state.
package score

import "strings"

type keywordWeight struct {
	keyword string
	weight  float64
}

// Single static table, one entry per taxonomy keyword. Tier weights:
// 4.0 core terms, 3.5 premium brands, 3.0 primary jewellery terms,
// 2.5 pieces/materials and fashion, 2.0 events/celebrity, 1.5 industry,
// 1.0 generic sector terms.
var taxonomy = []keywordWeight{
	{"luxury", 4.0},
	{"jewellery", 4.0},
	{"fine jewellery", 4.0},
	{"craftsmanship", 4.0},

	{"cartier", 3.5},
	{"tiffany", 3.5},
	{"bulgari", 3.5},
	{"chanel", 3.5},
	{"dior", 3.5},
	{"van cleef", 3.5},
	{"graff", 3.5},
	{"harry winston", 3.5},
	{"chopard", 3.5},
	{"piaget", 3.5},
	{"boucheron", 3.5},

	{"jewelry", 3.0},
	{"diamond", 3.0},
	{"engagement ring", 3.0},
	{"wedding ring", 3.0},
	{"lab grown diamonds", 3.0},
	{"diamond price", 3.0},
	{"gold price", 3.0},

	{"necklace", 2.5},
	{"bracelet", 2.5},
	{"earrings", 2.5},
	{"pendant", 2.5},
	{"brooch", 2.5},
	{"gold", 2.5},
	{"platinum", 2.5},
	{"silver", 2.5},
	{"emerald", 2.5},
	{"sapphire", 2.5},
	{"ruby", 2.5},
	{"fashion", 2.5},
	{"accessories", 2.5},
	{"watches", 2.5},
	{"timepiece", 2.5},
	{"collection", 2.5},
	{"launch", 2.5},
	{"haute couture", 2.5},
	{"limited edition", 2.5},

	{"red carpet", 2.0},
	{"celebrity", 2.0},
	{"fashion week", 2.0},
	{"auction", 2.0},
	{"royal", 2.0},
	{"royals", 2.0},

	{"collaboration", 1.5},
	{"investment", 1.5},
	{"trends", 1.5},
	{"style", 1.5},

	{"luxury sector", 1.0},
	{"luxury marketing trends", 1.0},
}

// Keywords returns the taxonomy keywords in table order. Used by the sitemap
// URL pre-filter, which only needs membership, not weights.
func Keywords() []string {
	out := make([]string, len(taxonomy))
	for i, kw := range taxonomy {
		out[i] = kw.keyword
	}
	return out
}

// Score computes the relevance of an article from whatever text is available.
// Matching is case-insensitive substring containment over title+body. After
// summing tier weights, a multiplier rewards breadth: x1.2 for more than two
// distinct matches, x1.4 (replacing, not stacking) for more than four.
func Score(title, body string) (float64, []string) {
	combined := strings.ToLower(title + " " + body)
	if strings.TrimSpace(combined) == "" {
		return 0, nil
	}

	var found []string
	total := 0.0
	for _, kw := range taxonomy {
		if strings.Contains(combined, kw.keyword) {
			found = append(found, kw.keyword)
			total += kw.weight
		}
	}

	switch {
	case len(found) > 4:
		total *= 1.4
	case len(found) > 2:
		total *= 1.2
	}

	return total, found
}

package score

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		body      string
		wantScore float64
		wantFound int
	}{
		{
			name:      "single keyword no multiplier",
			title:     "Platinum prices steady",
			wantScore: 2.5,
			wantFound: 1,
		},
		{
			name:      "two keywords no multiplier",
			title:     "Gold and silver markets",
			wantScore: 5.0,
			wantFound: 2,
		},
		{
			name:      "three keywords get breadth multiplier",
			title:     "Emerald and sapphire brooch",
			wantScore: 9.0, // (2.5+2.5+2.5) * 1.2
			wantFound: 3,
		},
		{
			name:      "four keywords get breadth multiplier",
			title:     "Cartier unveils new diamond necklace collection",
			wantScore: 13.8, // (3.5+3.0+2.5+2.5) * 1.2
			wantFound: 4,
		},
		{
			name:      "five keywords get higher multiplier",
			title:     "Luxury jewellery week",
			body:      "A diamond and gold necklace steals the show",
			wantScore: 22.4, // (4.0+4.0+3.0+2.5+2.5) * 1.4
			wantFound: 5,
		},
		{
			name:      "case insensitive",
			title:     "CARTIER",
			wantScore: 3.5,
			wantFound: 1,
		},
		{
			name:      "no keywords",
			title:     "A nice day out",
			body:      "We went for a walk and had tea",
			wantScore: 0,
			wantFound: 0,
		},
		{
			name:      "empty input",
			wantScore: 0,
			wantFound: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Score(tt.title, tt.body)
			if !almostEqual(got, tt.wantScore) {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.title, tt.body, got, tt.wantScore)
			}
			if len(found) != tt.wantFound {
				t.Errorf("found %d keywords %v, want %d", len(found), found, tt.wantFound)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	title := "Tiffany launches limited edition engagement ring"
	body := "The collection debuts at fashion week"

	first, firstFound := Score(title, body)
	for i := 0; i < 5; i++ {
		got, found := Score(title, body)
		if got != first || len(found) != len(firstFound) {
			t.Fatalf("run %d: got (%v, %v), want (%v, %v)", i, got, found, first, firstFound)
		}
	}
}

func TestScoreRelevantOutranksIrrelevant(t *testing.T) {
	relevant, _ := Score("Cartier unveils new diamond necklace collection", "")
	irrelevant, _ := Score("Local council debates parking", "")
	if relevant <= irrelevant {
		t.Errorf("relevant article scored %v, irrelevant %v", relevant, irrelevant)
	}
	if irrelevant != 0 {
		t.Errorf("irrelevant article scored %v, want 0", irrelevant)
	}
}

func TestKeywordsCoversTaxonomy(t *testing.T) {
	keywords := Keywords()
	if len(keywords) != len(taxonomy) {
		t.Fatalf("Keywords() returned %d entries, taxonomy has %d", len(keywords), len(taxonomy))
	}
	if keywords[0] != "luxury" {
		t.Errorf("first keyword = %q, want table order preserved", keywords[0])
	}
}

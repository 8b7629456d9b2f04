package article

import "testing"

func TestNewCandidateDefaults(t *testing.T) {
	c := NewCandidate("Example", "https://example.com/story")
	if c.Author != "Unknown" {
		t.Errorf("Author = %q, want Unknown until resolved", c.Author)
	}
	if c.PublishedAt.IsZero() {
		t.Error("PublishedAt should default to a usable timestamp")
	}
	if c.FullContent != "" {
		t.Error("FullContent must start empty")
	}
}

func TestResultAccessors(t *testing.T) {
	result := &Result{
		Publications: []PublicationResult{
			{Publication: "A", Articles: []Candidate{
				NewCandidate("A", "https://a.example/1"),
				NewCandidate("A", "https://a.example/2"),
			}},
			{Publication: "B"},
			{Publication: "C", Articles: []Candidate{
				NewCandidate("C", "https://c.example/1"),
			}},
		},
	}

	all := result.Articles()
	if len(all) != 3 {
		t.Fatalf("Articles() returned %d, want 3", len(all))
	}
	if all[0].Publication != "A" || all[2].Publication != "C" {
		t.Error("Articles() lost the publication grouping order")
	}
	if got := result.Covered(); got != 2 {
		t.Errorf("Covered() = %d, want 2", got)
	}
}

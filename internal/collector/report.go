package collector

import (
	"fmt"
	"strings"

	"readingroundup/internal/article"
)

// ReportText renders a run's outcome as the plain-text summary written next
// to the structured outputs.
func ReportText(result *article.Result) string {
	var b strings.Builder

	b.WriteString("COLLECTION REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Run started:   %s\n", result.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run finished:  %s\n", result.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Publications:  %d covered of %d attempted\n", result.Covered(), len(result.Publications))
	fmt.Fprintf(&b, "Articles:      %d\n\n", len(result.Articles()))

	for _, pub := range result.Publications {
		fmt.Fprintf(&b, "%s (%d)\n", pub.Publication, len(pub.Articles))
		if len(pub.Articles) == 0 {
			b.WriteString("  no articles collected\n\n")
			continue
		}
		for _, a := range pub.Articles {
			fmt.Fprintf(&b, "  [%.1f] %s\n", a.RelevanceScore, a.Title)
			fmt.Fprintf(&b, "        %s\n", a.URL)
			if len(a.KeywordsFound) > 0 {
				fmt.Fprintf(&b, "        keywords: %s\n", strings.Join(a.KeywordsFound, ", "))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/newsgap/newsgap/models"
)

const (
	// maxPromptArticles caps how many articles reach the model; the
	// oldest are dropped first when a batch is over the cap.
	maxPromptArticles = 50
	// previewLen truncates each article body fed into the prompt.
	previewLen = 500
	// briefFallbackLen bounds the fallback executive brief.
	briefFallbackLen = 200
)

const defaultPromptTemplate = `You are a professional intelligence analyst. Analyze the articles below and produce one concise intelligence report.

## Report requirements

1. **Executive summary** (3-5 core points)
   - One sentence per point; keep only the signals that change a decision.

2. **Narrative themes** (2-3 main storylines)
   - Each theme: a title, its evidence chain, and its impact radius.

3. **Key signals**
   - High-confidence signals (3-5), medium (2-3), low (1-2).
   - Cite the supporting article numbers for every signal.

4. **Filtered-out content**
   - Briefly state which information was excluded and why it does not matter today.

5. **Action recommendations**
   - Risk avoidance (1-2), opportunity positioning (1-2), tracking suggestions (1-2).

## Principles

- Signal over coverage: only the few items that change the picture deserve depth.
- Every conclusion needs a cited source.
- Recommendations must be concrete and actionable.
- Stay measured; no hype.

Output the report in Markdown.`

// BuildPrompt assembles the analysis prompt. Articles are enumerated
// "[n] ..." blocks; n is the citation contract the presentation layer
// resolves back to article ids. A custom prompt replaces the default
// template entirely.
func BuildPrompt(articles []models.Article, customPrompt string) string {
	capped := capArticles(articles, maxPromptArticles)

	var sb strings.Builder
	for i, a := range capped {
		preview, truncated := truncateRunes(a.Content, previewLen)
		if truncated {
			preview += "..."
		}
		fmt.Fprintf(&sb, "[%d] %s\nSource: %s\nTime: %s\nContent: %s\nURL: %s\n",
			i+1, a.Title, a.SourceName, a.PublishedAt.Format(time.RFC3339), preview, a.URL)
		if i < len(capped)-1 {
			sb.WriteString("\n---\n")
		}
	}

	base := customPrompt
	if base == "" {
		base = defaultPromptTemplate
	}

	return fmt.Sprintf("%s\n\n# Articles (%d total)\n\n%s\n\nGenerate the intelligence report from the articles above.",
		base, len(articles), sb.String())
}

// capArticles keeps at most max articles, dropping the oldest first.
func capArticles(articles []models.Article, max int) []models.Article {
	if len(articles) <= max {
		return articles
	}
	sorted := make([]models.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return sorted[:max]
}

var briefHeadings = []string{"executive summary", "executive brief", "core points", "key takeaways"}

// ExtractBrief pulls a short preview out of a full markdown report: the
// few lines following an executive-summary heading, or the first three
// non-empty lines when no such heading exists.
func ExtractBrief(report string) string {
	var lines []string
	for _, line := range strings.Split(report, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, heading := range briefHeadings {
			if strings.Contains(lower, heading) {
				end := i + 4
				if end > len(lines) {
					end = len(lines)
				}
				brief := strings.Join(lines[i+1:end], " ")
				return strings.TrimSpace(stripMarkdown(brief))
			}
		}
	}

	end := 3
	if end > len(lines) {
		end = len(lines)
	}
	fallback := strings.TrimSpace(stripMarkdown(strings.Join(lines[:end], " ")))
	fallback, _ = truncateRunes(fallback, briefFallbackLen)
	return fallback
}

// truncateRunes cuts s to at most max runes, never splitting a
// multi-byte character.
func truncateRunes(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	return string([]rune(s)[:max]), true
}

func stripMarkdown(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '-', '`', '>':
			return -1
		default:
			return r
		}
	}, s)
}

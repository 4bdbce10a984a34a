package search

import (
	"strings"
	"unicode"

	"github.com/localdex/engine/pkg/core"
)

// DefaultSnippetWindow is the number of characters kept on either side of
// a match (resolved open question, SPEC_FULL.md). Callers choose another
// width through the window argument of Snippets.
const DefaultSnippetWindow = 60

// MaxSnippetsPerHit bounds how many snippets a single search result
// carries, so a document with many matches doesn't dominate the response.
const MaxSnippetsPerHit = 5

// maxMatchesPerTerm bounds how many occurrences of the same term
// contribute candidate snippets, so a single repeated word can't crowd
// out matches of other query terms.
const maxMatchesPerTerm = 5

// candidate is one prospective snippet, tagged with whether its match was
// a whole-word occurrence (vs. a substring inside a longer word).
type candidate struct {
	snippet core.Snippet
	exact   bool
}

// Snippets extracts up to MaxSnippetsPerHit windows of content around the
// occurrences of terms, ordered by exact whole-word matches first, then by
// ascending position within the document. window is the number of
// characters kept on each side; DefaultSnippetWindow is used when window
// is zero or negative.
func Snippets(content string, terms []string, window int) []core.Snippet {
	if window <= 0 {
		window = DefaultSnippetWindow
	}

	terms = dedupeTerms(terms)
	if len(terms) == 0 || content == "" {
		return nil
	}

	lowerContent := strings.ToLower(content)

	var candidates []candidate

	for _, term := range terms {
		lowerTerm := strings.ToLower(term)
		if lowerTerm == "" {
			continue
		}

		start := 0

		for found := 0; found < maxMatchesPerTerm; found++ {
			idx := strings.Index(lowerContent[start:], lowerTerm)
			if idx == -1 {
				break
			}

			pos := start + idx

			candidates = append(candidates, candidate{
				snippet: core.Snippet{
					Text:      windowAround(content, pos, len(term), window),
					MatchTerm: content[pos : pos+len(term)],
					Position:  pos,
				},
				exact: isExactWordMatch(content, pos, len(term)),
			})

			start = pos + len(lowerTerm)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sortCandidates(candidates)

	out := make([]core.Snippet, 0, MaxSnippetsPerHit)
	seen := make(map[int]bool)

	for _, c := range candidates {
		if len(out) >= MaxSnippetsPerHit {
			break
		}

		if seen[c.snippet.Position] {
			continue
		}

		seen[c.snippet.Position] = true

		out = append(out, c.snippet)
	}

	return out
}

// windowAround returns the text window of `window` characters on either
// side of content[pos:pos+matchLen], trimmed to UTF-8 rune boundaries and
// marked with an ellipsis where it was truncated.
func windowAround(content string, pos, matchLen, window int) string {
	start := pos - window
	if start < 0 {
		start = 0
	}

	end := pos + matchLen + window
	if end > len(content) {
		end = len(content)
	}

	for start > 0 && !utf8RuneStart(content[start]) {
		start--
	}

	for end < len(content) && !utf8RuneStart(content[end]) {
		end++
	}

	text := strings.TrimSpace(content[start:end])

	if start > 0 {
		text = "…" + text
	}

	if end < len(content) {
		text += "…"
	}

	return text
}

// utf8RuneStart reports whether b begins a UTF-8 rune (is not a
// continuation byte).
func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// isExactWordMatch reports whether the match at [pos, pos+length) is
// bounded by non-letter, non-digit characters on both sides.
func isExactWordMatch(content string, pos, length int) bool {
	before := rune(' ')
	if pos > 0 {
		before = rune(content[pos-1])
	}

	after := rune(' ')
	if pos+length < len(content) {
		after = rune(content[pos+length])
	}

	return !unicode.IsLetter(before) && !unicode.IsDigit(before) &&
		!unicode.IsLetter(after) && !unicode.IsDigit(after)
}

// sortCandidates orders candidates with exact matches first, then by
// ascending position. The candidate count per hit is small and bounded,
// so a simple insertion sort is preferable to pulling in sort.Slice for
// such a short-lived, tiny slice.
func sortCandidates(candidates []candidate) {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidateLess(candidates[j], candidates[j-1]); j-- {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}
}

func candidateLess(a, b candidate) bool {
	if a.exact != b.exact {
		return a.exact
	}

	return a.snippet.Position < b.snippet.Position
}

func dedupeTerms(terms []string) []string {
	seen := make(map[string]bool)

	out := make([]string, 0, len(terms))

	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}

		seen[strings.ToLower(t)] = true

		out = append(out, t)
	}

	return out
}

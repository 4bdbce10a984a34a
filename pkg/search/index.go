// Package search wraps bleve/v2 as the engine's Full-Text Index: it knows
// nothing about document content beyond what it indexes for relevance
// (content, name, path, type, size, last_modified) and always defers to
// the Document Store for everything else, joined by id (spec §3/§4.4).
// The mapping and query-construction approach is generalized from a
// two-field (title/content) doc schema to the richer field set this
// domain needs, extended with a small boolean query grammar (AND/OR/NOT,
// +/-, quoted phrases).
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveSearch "github.com/blevesearch/bleve/v2/search"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/localdex/engine/pkg/core"
)

// searchDocument is what actually gets indexed by bleve; it intentionally
// excludes the full Structured tree, which lives only in the Document
// Store.
type searchDocument struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	ModifiedAt int64  `json:"modified_at"`
	Content    string `json:"content"`
}

// Hit is one relevance-ranked match. The caller (the engine coordinator)
// joins ID against the Document Store to build a core.SearchResult.
type Hit struct {
	ID        string
	Score     float64
	Fragments map[string][]string
}

// Index is the Full-Text Index.
type Index struct {
	bi bleve.Index
}

// Open opens the bleve index at path, creating it with the field mapping
// below if it does not already exist.
func Open(path string) (*Index, error) {
	bi, err := bleve.Open(path)
	if err != nil {
		bi, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create full-text index: %w", err)
		}
	}

	return &Index{bi: bi}, nil
}

// Close releases the index.
func (idx *Index) Close() error {
	if err := idx.bi.Close(); err != nil {
		return fmt.Errorf("close full-text index: %w", err)
	}

	return nil
}

// Put indexes (or re-indexes) doc under its stable id, using doc.Content
// as the searchable body. Re-indexing is a delete-then-add at the bleve
// level; bleve.Index itself already treats same-id Index calls as an
// upsert, so callers never need to call Remove first. A refused write is
// retried once before ErrIndexWrite is returned.
func (idx *Index) Put(doc core.Document) error {
	sd := searchDocument{
		Path:       doc.Path,
		Name:       doc.Name,
		Type:       string(doc.Type),
		Size:       doc.Size,
		ModifiedAt: doc.ModifiedAt.Unix(),
		Content:    doc.Content,
	}

	err := idx.bi.Index(doc.ID, sd)
	if err != nil {
		err = idx.bi.Index(doc.ID, sd)
	}

	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrIndexWrite, doc.Path, err)
	}

	return nil
}

// Remove deletes id from the index. Deleting an id that was never indexed
// is not an error. A refused delete is retried once before ErrIndexWrite
// is returned.
func (idx *Index) Remove(id string) error {
	err := idx.bi.Delete(id)
	if err != nil {
		err = idx.bi.Delete(id)
	}

	if err != nil {
		return fmt.Errorf("%w: remove %s: %v", core.ErrIndexWrite, id, err)
	}

	return nil
}

// DocCount returns the number of documents currently in the index.
func (idx *Index) DocCount() (uint64, error) {
	count, err := idx.bi.DocCount()
	if err != nil {
		return 0, fmt.Errorf("doc count: %w", err)
	}

	return count, nil
}

// Search runs queryStr against the index and returns ranked hits, capped
// at opts.Limit (core.DefaultSearchLimit when unset). Ties in relevance
// score are broken by more-recently-modified first, then shorter path
// first, matching the deterministic ordering spec §4.4 requires for
// reproducible result pages.
func (idx *Index) Search(queryStr string, opts core.SearchOpts) ([]Hit, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = core.DefaultSearchLimit
	}

	q := buildQuery(queryStr)

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Fields = []string{"path", "modified_at"}

	result, err := idx.bi.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))

	for _, h := range result.Hits {
		hits = append(hits, Hit{
			ID:        h.ID,
			Score:     h.Score,
			Fragments: map[string][]string(h.Fragments),
		})
	}

	stableSortByTie(hits, result.Hits)

	return hits, int(result.Total), nil
}

// tieKey is the secondary-ordering information used to break exact score
// ties: more recently modified first, then shorter path first.
type tieKey struct {
	modified int64
	path     string
}

// stableSortByTie breaks exact score ties using the stored modified_at
// (descending) and path (ascending, shorter first) fields, without
// disturbing the relevance ordering bleve already produced for
// non-tied hits.
func stableSortByTie(hits []Hit, raw bleveSearch.DocumentMatchCollection) {
	keys := make(map[string]tieKey, len(raw))

	for _, h := range raw {
		var k tieKey

		if path, ok := h.Fields["path"].(string); ok {
			k.path = path
		}

		switch m := h.Fields["modified_at"].(type) {
		case float64:
			k.modified = int64(m)
		}

		keys[h.ID] = k
	}

	start := 0
	for start < len(hits) {
		end := start + 1
		for end < len(hits) && hits[end].Score == hits[start].Score {
			end++
		}

		if end-start > 1 {
			group := hits[start:end]

			for i := 1; i < len(group); i++ {
				for j := i; j > 0; j-- {
					a, b := keys[group[j-1].ID], keys[group[j].ID]
					if tieLess(b, a) {
						group[j-1], group[j] = group[j], group[j-1]
					} else {
						break
					}
				}
			}
		}

		start = end
	}
}

func tieLess(a, b tieKey) bool {
	if a.modified != b.modified {
		return a.modified > b.modified
	}

	return len(a.path) < len(b.path) || (len(a.path) == len(b.path) && a.path < b.path)
}

func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Store = true
	textFieldMapping.IncludeTermVectors = true

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Store = true

	numericFieldMapping := bleve.NewNumericFieldMapping()
	numericFieldMapping.Store = true

	dateFieldMapping := bleve.NewNumericFieldMapping()
	dateFieldMapping.Store = true

	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("path", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("size", numericFieldMapping)
	docMapping.AddFieldMappingsAt("modified_at", dateFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// minFuzzyTermLength is the minimum term length fuzzy matching applies to;
// shorter terms produce too many false positives.
const minFuzzyTermLength = 4

// longTermThreshold raises the edit distance allowed for longer terms.
const longTermThreshold = 7

// clauseMode is how a parsed query token combines with the rest of the
// query.
type clauseMode int

const (
	modeMust clauseMode = iota
	modeMustNot
	modeShould
)

type clause struct {
	text   string
	phrase bool
	mode   clauseMode
}

// buildQuery parses queryStr with parseBoolean and falls back to a plain
// disjunctive bag-of-words match across all terms if parsing finds
// nothing usable (spec's degrade-on-parse-failure requirement). A query
// made up entirely of operator keywords (e.g. "AND OR NOT") carries no
// actual search terms, so it degrades to no results rather than to a
// literal bag-of-words search for those keywords.
func buildQuery(queryStr string) bleveQuery.Query {
	clauses, operatorOnly := parseBoolean(queryStr)
	if len(clauses) == 0 {
		if operatorOnly {
			return bleve.NewMatchNoneQuery()
		}

		return bagOfWords(queryStr)
	}

	bq := bleve.NewBooleanQuery()

	var musts, shoulds []bleveQuery.Query

	for _, c := range clauses {
		fq := fieldQuery(c.text, c.phrase)

		switch c.mode {
		case modeMustNot:
			bq.AddMustNot(fq)
		case modeShould:
			shoulds = append(shoulds, fq)
		default:
			musts = append(musts, fq)
		}
	}

	if len(musts) > 0 {
		bq.AddMust(musts...)
	}

	if len(shoulds) > 0 {
		bq.AddShould(shoulds...)
	}

	if len(musts) == 0 && len(shoulds) == 0 {
		return bagOfWords(queryStr)
	}

	return bq
}

// bagOfWords treats the entire input as a disjunction of its words,
// ignoring any operators — the degraded fallback when structured parsing
// yields nothing.
func bagOfWords(queryStr string) bleveQuery.Query {
	words := strings.Fields(queryStr)
	if len(words) == 0 {
		return bleve.NewMatchNoneQuery()
	}

	qs := make([]bleveQuery.Query, 0, len(words))
	for _, w := range words {
		qs = append(qs, fieldQuery(strings.Trim(w, `"+-`), false))
	}

	return bleve.NewDisjunctionQuery(qs...)
}

// parseBoolean tokenizes queryStr into clauses. Supported grammar:
//   - "quoted phrases" match as a phrase rather than individual words
//   - +term requires the term (must match)
//   - -term excludes the term (must not match)
//   - OR between two bare terms groups both into a disjunction instead
//     of the default conjunction
//   - NOT before a term excludes it (must not match), same as -term
//   - everything else defaults to AND (must match)
//
// The second return value reports whether every token was consumed as an
// operator keyword rather than a real term, so a query like "AND OR NOT"
// can be told apart from one that genuinely failed to parse.
func parseBoolean(queryStr string) ([]clause, bool) {
	tokens := tokenize(queryStr)

	var clauses []clause

	pendingOr := false
	pendingNot := false
	sawOnlyOperators := len(tokens) > 0

	for _, tok := range tokens {
		if !tok.phrase && strings.EqualFold(tok.text, "OR") {
			if len(clauses) > 0 {
				clauses[len(clauses)-1].mode = modeShould
			}

			pendingOr = true

			continue
		}

		if !tok.phrase && strings.EqualFold(tok.text, "AND") {
			continue
		}

		if !tok.phrase && strings.EqualFold(tok.text, "NOT") {
			pendingNot = true

			continue
		}

		sawOnlyOperators = false

		mode := modeMust
		text := tok.text

		switch {
		case !tok.phrase && strings.HasPrefix(text, "+"):
			text = strings.TrimPrefix(text, "+")
		case !tok.phrase && strings.HasPrefix(text, "-"):
			text = strings.TrimPrefix(text, "-")
			mode = modeMustNot
		}

		if text == "" {
			continue
		}

		if pendingOr {
			mode = modeShould
		}

		if pendingNot {
			mode = modeMustNot
		}

		clauses = append(clauses, clause{text: text, phrase: tok.phrase, mode: mode})

		pendingOr = false
		pendingNot = false
	}

	return clauses, sawOnlyOperators
}

type token struct {
	text   string
	phrase bool
}

// tokenize splits on whitespace, treating double-quoted spans as single
// phrase tokens.
func tokenize(input string) []token {
	var tokens []token

	input = strings.TrimSpace(input)

	i := 0
	for i < len(input) {
		if input[i] == ' ' || input[i] == '\t' {
			i++
			continue
		}

		if input[i] == '"' {
			end := strings.IndexByte(input[i+1:], '"')
			if end == -1 {
				phrase := strings.TrimSpace(input[i+1:])
				if phrase != "" {
					tokens = append(tokens, token{text: phrase, phrase: true})
				}

				break
			}

			phrase := strings.TrimSpace(input[i+1 : i+1+end])
			if phrase != "" {
				tokens = append(tokens, token{text: phrase, phrase: true})
			}

			i += end + 2

			continue
		}

		end := strings.IndexAny(input[i:], " \t")
		if end == -1 {
			tokens = append(tokens, token{text: input[i:]})
			break
		}

		tokens = append(tokens, token{text: input[i : i+end]})
		i += end
	}

	return tokens
}

// fieldQuery builds a disjunction across content and name for one clause,
// boosting name matches so filename hits outrank body hits, with prefix
// and fuzzy fallbacks for plain (non-phrase) terms.
func fieldQuery(text string, phrase bool) bleveQuery.Query {
	if phrase {
		nameQ := bleve.NewMatchPhraseQuery(text)
		nameQ.SetField("name")
		nameQ.SetBoost(8.0)

		contentQ := bleve.NewMatchPhraseQuery(text)
		contentQ.SetField("content")
		contentQ.SetBoost(4.0)

		return bleve.NewDisjunctionQuery(nameQ, contentQ)
	}

	subQueries := make([]bleveQuery.Query, 0, 6)

	nameMatch := bleve.NewMatchQuery(text)
	nameMatch.SetField("name")
	nameMatch.SetBoost(6.0)

	contentMatch := bleve.NewMatchQuery(text)
	contentMatch.SetField("content")
	contentMatch.SetBoost(3.0)

	subQueries = append(subQueries, nameMatch, contentMatch)

	lowered := strings.ToLower(text)

	namePrefix := bleve.NewPrefixQuery(lowered)
	namePrefix.SetField("name")
	namePrefix.SetBoost(3.0)

	contentPrefix := bleve.NewPrefixQuery(lowered)
	contentPrefix.SetField("content")
	contentPrefix.SetBoost(1.5)

	subQueries = append(subQueries, namePrefix, contentPrefix)

	if len(text) >= minFuzzyTermLength {
		fuzziness := 1
		if len(text) >= longTermThreshold {
			fuzziness = 2
		}

		nameFuzzy := bleve.NewFuzzyQuery(lowered)
		nameFuzzy.SetField("name")
		nameFuzzy.SetFuzziness(fuzziness)
		nameFuzzy.SetBoost(1.0)

		contentFuzzy := bleve.NewFuzzyQuery(lowered)
		contentFuzzy.SetField("content")
		contentFuzzy.SetFuzziness(fuzziness)
		contentFuzzy.SetBoost(0.5)

		subQueries = append(subQueries, nameFuzzy, contentFuzzy)
	}

	return bleve.NewDisjunctionQuery(subQueries...)
}

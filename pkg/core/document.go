// Package core defines the domain types shared by every component of the
// search engine: documents, structured content, index statistics, and the
// search/history records that flow between the store, the index, and the
// coordinator.
package core

import "time"

// DocType identifies the format family of a document.
type DocType string

const (
	DocTypeWord        DocType = "word"
	DocTypePowerPoint  DocType = "powerpoint"
	DocTypePDF         DocType = "pdf"
	DocTypeSpreadsheet DocType = "spreadsheet"
	DocTypeText        DocType = "text"
)

// DocTypeForExt maps a lowercased, dot-prefixed extension to its DocType.
// Extensions outside this map are unsupported.
var DocTypeForExt = map[string]DocType{
	".docx": DocTypeWord,
	".pptx": DocTypePowerPoint,
	".xlsx": DocTypeSpreadsheet,
	".pdf":  DocTypePDF,
	".txt":  DocTypeText,
	".md":   DocTypeText,
}

// SupportedExtensions is the closed set of extensions the Walker and
// Extractor Registry recognize, compared case-insensitively.
var SupportedExtensions = map[string]bool{
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".pdf":  true,
	".txt":  true,
	".md":   true,
}

// Document is the unit of indexing: everything the engine knows about one
// file on disk. Content and Structured are populated by extraction and
// survive until the next re-extraction or removal.
type Document struct {
	Path        string // absolute path; unique identity
	ID          string // stable id derived from Path
	Name        string // display name (base of Path)
	Size        int64
	ModifiedAt  time.Time
	Type        DocType
	Content     string
	Structured  *Section // nil when the format has no structured tree
	HasWarning  bool     // set when extraction was partial
	ExtractedAt time.Time
}

// DocumentMeta is a Document without its content, for listings.
type DocumentMeta struct {
	Path       string
	ID         string
	Name       string
	Size       int64
	ModifiedAt time.Time
	Type       DocType
	HasWarning bool
}

// Meta projects a Document down to its DocumentMeta.
func (d Document) Meta() DocumentMeta {
	return DocumentMeta{
		Path:       d.Path,
		ID:         d.ID,
		Name:       d.Name,
		Size:       d.Size,
		ModifiedAt: d.ModifiedAt,
		Type:       d.Type,
		HasWarning: d.HasWarning,
	}
}

// SectionTag is the closed set of structured-content node kinds.
type SectionTag string

const (
	SectionHeading        SectionTag = "heading"
	SectionParagraph      SectionTag = "paragraph"
	SectionListItem       SectionTag = "list_item"
	SectionTable          SectionTag = "table"
	SectionTableRow       SectionTag = "table_row"
	SectionTableCell      SectionTag = "table_cell"
	SectionPageBreak      SectionTag = "page_break"
	SectionSlideBreak     SectionTag = "slide_break"
	SectionHorizontalRule SectionTag = "horizontal_rule"
	SectionCodeBlock      SectionTag = "code_block"
	SectionLink           SectionTag = "link"
	SectionImage          SectionTag = "image"
)

// Run is an inline text span carrying character-level formatting.
type Run struct {
	Text          string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Color         string
	Highlight     string
}

// Section is one node of a document's structured content tree. A section
// carries either inline Runs (leaf content) or Children (container
// content), matching the invariants: tables contain only rows, rows only
// cells, list depth is non-negative, heading level is 1-6.
type Section struct {
	Tag       SectionTag
	Level     int // Heading level 1-6; zero otherwise
	Ordered   bool
	Depth     int // ListItem only, >= 0
	Slide     int // SlideBreak only
	URL       string
	ImageAlt  string
	ImageW    int
	ImageH    int
	ImageData []byte
	Runs      []Run
	Children  []*Section
}

// ExtractResult is what an Extractor returns for a processed file.
// PlainText is populated when Skipped is false; Structured is nil for
// formats that don't produce a tree (plain .txt).
type ExtractResult struct {
	PlainText  string
	Structured *Section
	Warning    string // non-empty signals ExtractPartial
	Skipped    bool   // true signals ExtractSkipped
	SkipReason string
}

// IndexStats is the aggregate, derivable-on-demand view of the Document
// Store: counts by type, total size, folder count, and background-queue
// depth. It must always equal a fresh recount (invariant, spec §3).
type IndexStats struct {
	CountByType  map[DocType]int
	TotalBytes   int64
	FolderCount  int
	PendingQueue int
}

// RootFolder is a directory the user has added to the index.
type RootFolder struct {
	Path      string
	FileCount int
	AddedAt   time.Time
}

// SkippedFile records a file that extraction could not index, with a
// human-readable reason surfaced to the UI.
type SkippedFile struct {
	Path   string
	Name   string
	Reason string
}

// SearchHistoryEntry is one past query, most-recent-first in storage order.
type SearchHistoryEntry struct {
	Query       string
	Timestamp   time.Time
	ResultCount int
}

// SearchHistoryCap bounds the number of retained history entries. The
// source disagreed between 10 and 50 in different places; 50 is the
// resolved default (see SPEC_FULL.md open-question resolutions).
const SearchHistoryCap = 50

// SearchFilters narrow a search_index query post-match.
type SearchFilters struct {
	Types        []DocType
	ModifiedFrom time.Time
	ModifiedTo   time.Time
	MinSize      int64
	MaxSize      int64
	PathPrefix   string
}

// SearchOpts configures a single search_index invocation.
type SearchOpts struct {
	Limit   int
	Filters SearchFilters
}

// DefaultSearchLimit is applied when SearchOpts.Limit is zero or negative.
const DefaultSearchLimit = 100

// Snippet is a ±-character window around one query match inside a
// document's content, with the matched term preserved verbatim.
type Snippet struct {
	Text      string
	MatchTerm string
	Position  int
}

// SearchResult is one ranked hit joined from the index and the store.
type SearchResult struct {
	Path     string
	Name     string
	Type     DocType
	Size     int64
	Modified time.Time
	Score    float64
	Snippets []Snippet
}

// SearchResults is the full response to a search_index command.
type SearchResults struct {
	Hits  []SearchResult
	Total int
}

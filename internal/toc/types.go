// Package toc recovers a unit/lesson curriculum hierarchy from the
// noisy OCR text of a textbook's table-of-contents pages.
package toc

// EntryKind distinguishes unit rows from lesson rows in the flat entry
// list.
type EntryKind string

const (
	KindUnit   EntryKind = "unit"
	KindLesson EntryKind = "lesson"
)

// Entry is one recognized TOC line before hierarchy assembly. For
// lessons with a dotted number (e.g. 3.2), ParentUnit holds the unit
// part and Number the lesson part. Number 0 marks a line that carried a
// page number but no recognizable numbering.
type Entry struct {
	Kind       EntryKind `json:"kind"`
	Number     int       `json:"number"`
	ParentUnit int       `json:"parent_unit,omitempty"`
	Title      string    `json:"title"`
	PageStart  int       `json:"page_start"`
	PageEnd    int       `json:"page_end,omitempty"` // 0 when unknown
}

// ParsedLesson is a lesson row attached to a unit (or orphaned).
type ParsedLesson struct {
	UnitNumber   int    `json:"unit_number,omitempty"`
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	PageStart    int    `json:"page_start"`
	PageEnd      int    `json:"page_end,omitempty"`
}

// ParsedUnit owns an ordered run of lessons.
type ParsedUnit struct {
	UnitNumber int            `json:"unit_number"`
	Title      string         `json:"title"`
	PageStart  int            `json:"page_start"`
	PageEnd    int            `json:"page_end,omitempty"`
	Lessons    []ParsedLesson `json:"lessons"`
}

// ParsedTOC is the full parse result. OrphanLessons holds lessons whose
// parent unit could not be resolved; Entries is the flat recognized
// list the hierarchy was built from.
type ParsedTOC struct {
	Units         []ParsedUnit   `json:"units"`
	OrphanLessons []ParsedLesson `json:"orphan_lessons"`
	Entries       []Entry        `json:"entries"`
}

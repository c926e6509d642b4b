package toc

import (
	"sort"
	"strings"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

// Parse builds the curriculum hierarchy from all TOC-typed OCR records
// of one textbook. Unparsable lines are skipped; empty input yields an
// empty (non-nil) result.
func Parse(records []ocr.Result) ParsedTOC {
	entries := collectEntries(records)
	backfillEntries(entries)

	result := ParsedTOC{
		Units:         []ParsedUnit{},
		OrphanLessons: []ParsedLesson{},
		Entries:       entries,
	}

	// Scan with a "current unit" cursor. A unit entry closes the
	// previous unit; lessons attach to their explicit parent when it
	// exists, else to the current unit, else to the orphan list.
	var current *ParsedUnit
	flush := func() {
		if current != nil {
			result.Units = append(result.Units, *current)
			current = nil
		}
	}

	for _, e := range entries {
		switch e.Kind {
		case KindUnit:
			flush()
			current = &ParsedUnit{
				UnitNumber: e.Number,
				Title:      e.Title,
				PageStart:  e.PageStart,
				PageEnd:    e.PageEnd,
				Lessons:    []ParsedLesson{},
			}
		case KindLesson:
			lesson := ParsedLesson{
				UnitNumber:   e.ParentUnit,
				LessonNumber: e.Number,
				Title:        e.Title,
				PageStart:    e.PageStart,
				PageEnd:      e.PageEnd,
			}
			if target := findUnit(&result, current, e.ParentUnit); target != nil {
				if lesson.UnitNumber == 0 {
					lesson.UnitNumber = target.UnitNumber
				}
				target.Lessons = append(target.Lessons, lesson)
			} else {
				result.OrphanLessons = append(result.OrphanLessons, lesson)
			}
		}
	}
	flush()

	backfillUnits(result.Units)
	return result
}

// collectEntries concatenates TOC pages in ascending page order and
// classifies each non-empty line.
func collectEntries(records []ocr.Result) []Entry {
	tocRecords := make([]ocr.Result, 0, len(records))
	for _, r := range records {
		if r.DocType == ocr.DocTypeTOC {
			tocRecords = append(tocRecords, r)
		}
	}
	sort.SliceStable(tocRecords, func(i, j int) bool {
		return pageOf(tocRecords[i]) < pageOf(tocRecords[j])
	})

	entries := []Entry{}
	for _, r := range tocRecords {
		for _, line := range strings.Split(r.RawText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if e := classifyLine(line); e != nil {
				entries = append(entries, *e)
			}
		}
	}
	return entries
}

func pageOf(r ocr.Result) int {
	if r.PageNumber == nil {
		return 0
	}
	return *r.PageNumber
}

// findUnit resolves the unit a lesson should attach to: the explicit
// parent number when one of the seen units carries it (the open cursor
// included), else the cursor.
func findUnit(result *ParsedTOC, current *ParsedUnit, parentNumber int) *ParsedUnit {
	if parentNumber > 0 {
		if current != nil && current.UnitNumber == parentNumber {
			return current
		}
		for i := range result.Units {
			if result.Units[i].UnitNumber == parentNumber {
				return &result.Units[i]
			}
		}
	}
	return current
}

// backfillEntries fills missing page_end values positionally: an entry
// ends one page before the next entry in the flat list starts.
func backfillEntries(entries []Entry) {
	for i := range entries {
		if entries[i].PageEnd == 0 && i+1 < len(entries) {
			if end := entries[i+1].PageStart - 1; end >= entries[i].PageStart {
				entries[i].PageEnd = end
			}
		}
	}
}

// backfillUnits extends each unit to cover its lessons: the later of
// the last lesson's page_end and the next unit's page_start - 1.
func backfillUnits(units []ParsedUnit) {
	for i := range units {
		end := units[i].PageEnd
		if n := len(units[i].Lessons); n > 0 {
			if lessonEnd := units[i].Lessons[n-1].PageEnd; lessonEnd > end {
				end = lessonEnd
			}
		}
		if i+1 < len(units) {
			if nextStart := units[i+1].PageStart - 1; nextStart > end {
				end = nextStart
			}
		}
		units[i].PageEnd = end
	}
}

// LessonForPage returns the lesson whose page range contains page, or
// nil. Used by ingestion to assign chunk ownership.
func (t ParsedTOC) LessonForPage(page int) *ParsedLesson {
	for i := range t.Units {
		for j := range t.Units[i].Lessons {
			l := &t.Units[i].Lessons[j]
			if page >= l.PageStart && (l.PageEnd == 0 || page <= l.PageEnd) {
				return l
			}
		}
	}
	return nil
}

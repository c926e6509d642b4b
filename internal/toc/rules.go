package toc

import (
	"regexp"
	"strconv"
	"strings"
)

// Page-number extraction and entry classification are both ordered rule
// lists tried in sequence. New TOC formats are supported by appending a
// rule, not by touching the parser.

type pageRule struct {
	name string
	re   *regexp.Regexp
}

// pageRules extract a trailing page number and the remainder of the
// line. First match wins.
var pageRules = []pageRule{
	{"dot-leader", regexp.MustCompile(`^(.*?)\s*\.{2,}\s*(\d{1,4})\s*$`)},
	{"trailing-number", regexp.MustCompile(`^(.*?)\s+(\d{1,4})\s*$`)},
	{"dash-separated", regexp.MustCompile(`^(.*?)\s*[-–—]\s*(\d{1,4})\s*$`)},
	{"pipe-separated", regexp.MustCompile(`^(.*?)\s*\|\s*(\d{1,4})\s*$`)},
}

// stripPageNumber pulls a trailing page number off a TOC line. Lines
// without one are not TOC entries.
func stripPageNumber(line string) (remainder string, page int, ok bool) {
	for _, rule := range pageRules {
		m := rule.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		page, err := strconv.Atoi(m[2])
		if err != nil || page < 1 {
			continue
		}
		return cleanRemainder(m[1]), page, true
	}
	return "", 0, false
}

// cleanRemainder trims separator debris left behind after the page
// number was stripped.
func cleanRemainder(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".-–—| \t")
}

// entryRule classifies a page-stripped remainder. Unit rules run before
// lesson rules; a nil return means the rule does not apply.
type entryRule func(remainder string, page int) *Entry

var entryRules = []entryRule{
	matchLabeledUnit,
	matchBareUnit,
	matchLabeledLesson,
	matchBareLesson,
}

var (
	labeledUnitRe   = regexp.MustCompile(`(?i)^(?:unit|chapter|module|section)\s+(\d{1,3})(\.\d{1,3})?\s*[:.\-–—]?\s*(.*)$`)
	bareUnitRe      = regexp.MustCompile(`^(\d{1,3})\.\s+(.+)$`)
	labeledLessonRe = regexp.MustCompile(`(?i)^(?:lesson|topic|section)\s+(\d{1,3})\.(\d{1,3})\s*[:.\-–—]?\s*(.*)$`)
	bareLessonRe    = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\s*[:.\-–—]?\s*(.+)$`)
)

// matchLabeledUnit handles "Unit 3: Fractions" and friends. A dotted
// number after the label means the line is really a lesson, so the rule
// declines and the lesson rules get their turn.
func matchLabeledUnit(remainder string, page int) *Entry {
	m := labeledUnitRe.FindStringSubmatch(remainder)
	if m == nil || m[2] != "" {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	title := strings.TrimSpace(m[3])
	if n < 1 || title == "" {
		return nil
	}
	return &Entry{Kind: KindUnit, Number: n, Title: title, PageStart: page}
}

// matchBareUnit handles "3. Fractions" (number, dot, space, title).
func matchBareUnit(remainder string, page int) *Entry {
	m := bareUnitRe.FindStringSubmatch(remainder)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	if n < 1 {
		return nil
	}
	return &Entry{Kind: KindUnit, Number: n, Title: strings.TrimSpace(m[2]), PageStart: page}
}

// matchLabeledLesson handles "Lesson 3.2: Comparing Fractions".
func matchLabeledLesson(remainder string, page int) *Entry {
	m := labeledLessonRe.FindStringSubmatch(remainder)
	if m == nil {
		return nil
	}
	parent, _ := strconv.Atoi(m[1])
	n, _ := strconv.Atoi(m[2])
	title := strings.TrimSpace(m[3])
	if parent < 1 || n < 1 || title == "" {
		return nil
	}
	return &Entry{Kind: KindLesson, Number: n, ParentUnit: parent, Title: title, PageStart: page}
}

// matchBareLesson handles "3.2 Comparing Fractions".
func matchBareLesson(remainder string, page int) *Entry {
	m := bareLessonRe.FindStringSubmatch(remainder)
	if m == nil {
		return nil
	}
	parent, _ := strconv.Atoi(m[1])
	n, _ := strconv.Atoi(m[2])
	if parent < 1 || n < 1 {
		return nil
	}
	return &Entry{Kind: KindLesson, Number: n, ParentUnit: parent, Title: strings.TrimSpace(m[3]), PageStart: page}
}

// nonContentHeaders are front-matter lines that carry page numbers but
// are not curriculum entries.
var nonContentHeaders = map[string]bool{
	"table of contents": true,
	"contents":          true,
	"index":             true,
	"glossary":          true,
}

func isNonContentHeader(remainder string) bool {
	return nonContentHeaders[strings.ToLower(strings.TrimSpace(remainder))]
}

// classifyLine runs the full rule chain for one trimmed TOC line.
// Remainders that match no entry rule but carried a page number become
// unnumbered lessons; the hierarchy pass decides where they attach.
func classifyLine(line string) *Entry {
	if isNonContentHeader(line) {
		return nil
	}
	remainder, page, ok := stripPageNumber(line)
	if !ok {
		return nil
	}
	if remainder == "" || isNonContentHeader(remainder) {
		return nil
	}
	for _, rule := range entryRules {
		if e := rule(remainder, page); e != nil {
			return e
		}
	}
	return &Entry{Kind: KindLesson, Number: 0, Title: remainder, PageStart: page}
}

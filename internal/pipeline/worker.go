package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/brightpath-labs/textbookd/internal/bookstore"
	"github.com/brightpath-labs/textbookd/internal/chunker"
	"github.com/brightpath-labs/textbookd/internal/contenthash"
	"github.com/brightpath-labs/textbookd/internal/cover"
	"github.com/brightpath-labs/textbookd/internal/importer"
	"github.com/brightpath-labs/textbookd/internal/ocr"
	"github.com/brightpath-labs/textbookd/internal/retrieval"
	"github.com/brightpath-labs/textbookd/internal/toc"
)

// storeBatchSize is the number of chunks per bookstore write.
const storeBatchSize = 100

// Store is the slice of the bookstore API the worker needs.
type Store interface {
	GetBookHash(ctx context.Context, textbookID string) (string, error)
	PutChunks(ctx context.Context, textbookID string, chunks []retrieval.Chunk) error
	PutCurriculum(ctx context.Context, curriculum bookstore.Curriculum) error
	PutBookMeta(ctx context.Context, meta bookstore.BookMeta) error
}

// Worker processes a single textbook ingestion job.
type Worker struct {
	store     Store
	log       *slog.Logger
	chunkOpts chunker.Options

	maxConcurrentStore int
	pdfFallback        bool
}

func NewWorker(store Store, log *slog.Logger, chunkOpts chunker.Options, maxStore int, pdfFallback bool) *Worker {
	return &Worker{
		store:              store,
		log:                log,
		chunkOpts:          chunkOpts,
		maxConcurrentStore: maxStore,
		pdfFallback:        pdfFallback,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "textbook_id", job.TextbookID)

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	records := job.Records()
	if len(records) == 0 && len(job.FileData()) > 0 {
		imported, err := w.importFile(job)
		if err != nil {
			log.Error("import failed", "filename", job.Filename, "error", err)
			job.AddError(fmt.Sprintf("import: %s", err))
			job.SetStatus(StatusFailed, "parsing")
			return
		}
		records = imported
	}

	pages := pageRecords(records)
	if len(pages) == 0 {
		log.Warn("no page content in submission")
		job.AddError("no page content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	meta := coverMeta(records)
	if job.Title != "" {
		t := job.Title
		meta.Title = &t
	}

	job.SetContentHash(bookHash(pages))

	// Dedup check against the stored whole-book hash. A transient
	// store error falls through to re-ingest rather than failing.
	stored, err := w.store.GetBookHash(ctx, job.TextbookID)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if stored != "" && stored == job.Snapshot().ContentHash {
		log.Info("identical content already ingested, skipping")
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	curriculum := toc.Parse(records)

	// Phase 2: Chunk.
	job.SetStatus(StatusChunking, "chunking")
	textChunks := chunker.ChunkPages(records, w.chunkOpts)
	chunks := w.assembleChunks(job.TextbookID, textChunks, curriculum)

	lessons := 0
	for _, u := range curriculum.Units {
		lessons += len(u.Lessons)
	}
	lessons += len(curriculum.OrphanLessons)
	job.SetCounts(len(pages), len(chunks), len(curriculum.Units), lessons)
	log.Info("chunked textbook", "pages", len(pages), "chunks", len(chunks),
		"units", len(curriculum.Units), "lessons", lessons)

	if len(chunks) == 0 {
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: Store chunk batches with bounded concurrency.
	job.SetStatus(StatusStoring, "storing")
	hadErrors := !w.storeChunks(ctx, job, chunks, log)

	if err := w.store.PutCurriculum(ctx, curriculumPayload(job.TextbookID, curriculum)); err != nil {
		log.Error("curriculum write failed", "error", err)
		job.AddError(fmt.Sprintf("curriculum: %s", err))
		hadErrors = true
	}

	snap := job.Snapshot()
	bm := bookstore.BookMeta{
		TextbookID:  job.TextbookID,
		Title:       meta.Title,
		Publisher:   meta.Publisher,
		ISBN13:      meta.ISBN13,
		Edition:     meta.Edition,
		ContentHash: snap.ContentHash,
		PageCount:   len(pages),
		ChunkCount:  snap.Progress.ChunksStored,
		IngestedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.store.PutBookMeta(ctx, bm); err != nil {
		log.Error("meta write failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
		hadErrors = true
	}

	snap = job.Snapshot()
	switch {
	case hadErrors && snap.Progress.ChunksStored > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("ingestion finished", "status", job.Snapshot().Status,
		"stored", snap.Progress.ChunksStored)
}

func (w *Worker) importFile(job *Job) ([]ocr.Result, error) {
	imp, err := importer.ForFile(job.Filename)
	if err != nil {
		return nil, err
	}
	if p, ok := imp.(*importer.PDFImporter); ok {
		p.FallbackPdftotext = w.pdfFallback
	}
	records, err := imp.Import(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, err
	}
	return applyPageOverrides(records, job), nil
}

// applyPageOverrides retypes imported page records the caller flagged
// as the cover or TOC pages. Retyped records lose their page identity
// so they are excluded from chunking.
func applyPageOverrides(records []ocr.Result, job *Job) []ocr.Result {
	coverPage, tocPages := job.PageOverrides()
	if coverPage == 0 && len(tocPages) == 0 {
		return records
	}
	isTOC := make(map[int]bool, len(tocPages))
	for _, p := range tocPages {
		isTOC[p] = true
	}
	for i, r := range records {
		if r.DocType != ocr.DocTypePage || r.PageNumber == nil {
			continue
		}
		switch {
		case *r.PageNumber == coverPage:
			records[i].DocType = ocr.DocTypeCover
			records[i].Title = firstHeading(r)
		case isTOC[*r.PageNumber]:
			records[i].DocType = ocr.DocTypeTOC
			records[i].RawText = r.ChunkInput()
		}
	}
	return records
}

// firstHeading pulls a title candidate out of a retyped cover page.
func firstHeading(r ocr.Result) string {
	for _, el := range r.Layout {
		if el.Type == ocr.ElementHeading && strings.TrimSpace(el.Text) != "" {
			return strings.TrimSpace(el.Text)
		}
	}
	line, _, _ := strings.Cut(strings.TrimSpace(r.RawText), "\n")
	return strings.TrimSpace(line)
}

// assembleChunks attaches textbook and lesson identity to raw text
// chunks. Chunk IDs are deterministic so re-ingesting overwrites in
// place.
func (w *Worker) assembleChunks(textbookID string, textChunks []chunker.TextChunk, curriculum toc.ParsedTOC) []retrieval.Chunk {
	chunks := make([]retrieval.Chunk, 0, len(textChunks))
	for _, tc := range textChunks {
		lessonID := ""
		if l := curriculum.LessonForPage(tc.PageNumber); l != nil {
			lessonID = LessonID(l.UnitNumber, l.LessonNumber)
		}
		chunks = append(chunks, retrieval.Chunk{
			ID:            fmt.Sprintf("%s-p%04d-c%02d", textbookID, tc.PageNumber, tc.ChunkIndex),
			TextbookID:    textbookID,
			LessonID:      lessonID,
			PageNumber:    tc.PageNumber,
			ChunkIndex:    tc.ChunkIndex,
			Content:       tc.Content,
			ContentHash:   tc.ContentHash,
			TokenEstimate: tc.TokenEstimate,
		})
	}
	return chunks
}

// storeChunks writes chunk batches concurrently. Returns false when
// any batch failed.
func (w *Worker) storeChunks(ctx context.Context, job *Job, chunks []retrieval.Chunk, log *slog.Logger) bool {
	type batchResult struct {
		count int
		err   error
		start int
	}

	var batches [][]retrieval.Chunk
	for start := 0; start < len(chunks); start += storeBatchSize {
		end := start + storeBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[start:end])
	}

	sem := make(chan struct{}, w.maxConcurrentStore)
	results := make(chan batchResult, len(batches))
	for i, batch := range batches {
		sem <- struct{}{}
		go func(i int, batch []retrieval.Chunk) {
			defer func() { <-sem }()
			err := w.store.PutChunks(ctx, job.TextbookID, batch)
			results <- batchResult{count: len(batch), err: err, start: i * storeBatchSize}
		}(i, batch)
	}

	ok := true
	for range batches {
		r := <-results
		if r.err != nil {
			log.Error("chunk batch store failed", "offset", r.start, "error", r.err)
			job.AddError(fmt.Sprintf("store batch at %d: %s", r.start, r.err))
			ok = false
			continue
		}
		job.AddChunksStored(r.count)
	}
	return ok
}

// LessonID renders the canonical lesson identifier. Orphan lessons use
// unit 0.
func LessonID(unit, lesson int) string {
	return fmt.Sprintf("u%d-l%d", unit, lesson)
}

// pageRecords filters page-scan records, sorted by page number.
func pageRecords(records []ocr.Result) []ocr.Result {
	var pages []ocr.Result
	for _, r := range records {
		if r.DocType == ocr.DocTypePage && r.PageNumber != nil {
			pages = append(pages, r)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return *pages[i].PageNumber < *pages[j].PageNumber
	})
	return pages
}

// coverMeta parses the first cover record, if any.
func coverMeta(records []ocr.Result) cover.Metadata {
	for _, r := range records {
		if r.DocType == ocr.DocTypeCover {
			return cover.Parse(r)
		}
	}
	return cover.Metadata{}
}

// bookHash hashes the ordered page text for duplicate detection.
func bookHash(pages []ocr.Result) string {
	var sb strings.Builder
	for _, p := range pages {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.ChunkInput())
	}
	return contenthash.Hash(sb.String())
}

func curriculumPayload(textbookID string, parsed toc.ParsedTOC) bookstore.Curriculum {
	c := bookstore.Curriculum{TextbookID: textbookID}
	for _, u := range parsed.Units {
		unit := bookstore.Unit{
			UnitNumber: u.UnitNumber,
			Title:      u.Title,
			PageStart:  u.PageStart,
			PageEnd:    u.PageEnd,
		}
		for _, l := range u.Lessons {
			unit.Lessons = append(unit.Lessons, bookstore.Lesson{
				UnitNumber:   l.UnitNumber,
				LessonNumber: l.LessonNumber,
				Title:        l.Title,
				PageStart:    l.PageStart,
				PageEnd:      l.PageEnd,
			})
		}
		c.Units = append(c.Units, unit)
	}
	for _, l := range parsed.OrphanLessons {
		c.OrphanLessons = append(c.OrphanLessons, bookstore.Lesson{
			UnitNumber:   l.UnitNumber,
			LessonNumber: l.LessonNumber,
			Title:        l.Title,
			PageStart:    l.PageStart,
			PageEnd:      l.PageEnd,
		})
	}
	return c
}

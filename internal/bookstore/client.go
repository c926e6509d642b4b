package bookstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/brightpath-labs/textbookd/internal/retrieval"
)

// Client communicates with the bookstore HTTP API, the system of
// record for ingested textbooks. Transient failures (network errors,
// 5xx, 429) are retried with exponential backoff; 4xx responses are
// permanent.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxElapsed time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxElapsed: 2 * time.Minute,
	}
}

// Unit is one top-level curriculum division with its lessons.
type Unit struct {
	UnitNumber int      `json:"unit_number"`
	Title      string   `json:"title"`
	PageStart  int      `json:"page_start,omitempty"`
	PageEnd    int      `json:"page_end,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is one teachable section inside a unit.
type Lesson struct {
	UnitNumber   int    `json:"unit_number"`
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"title"`
	PageStart    int    `json:"page_start,omitempty"`
	PageEnd      int    `json:"page_end,omitempty"`
}

// Curriculum is the full unit/lesson hierarchy for one textbook.
type Curriculum struct {
	TextbookID    string   `json:"textbook_id"`
	Units         []Unit   `json:"units"`
	OrphanLessons []Lesson `json:"orphan_lessons,omitempty"`
}

// BookMeta is the textbook-level record, including the whole-book
// content hash used for duplicate detection on re-ingest.
type BookMeta struct {
	TextbookID  string  `json:"textbook_id"`
	Title       *string `json:"title,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	ISBN13      *string `json:"isbn13,omitempty"`
	Edition     *string `json:"edition,omitempty"`
	ContentHash string  `json:"content_hash"`
	PageCount   int     `json:"page_count"`
	ChunkCount  int     `json:"chunk_count"`
	IngestedAt  string  `json:"ingested_at"`
}

// PutChunks stores a batch of text chunks for a textbook.
func (c *Client) PutChunks(ctx context.Context, textbookID string, chunks []retrieval.Chunk) error {
	payload := struct {
		Chunks []retrieval.Chunk `json:"chunks"`
	}{Chunks: chunks}
	return c.send(ctx, http.MethodPut, "/textbooks/"+textbookID+"/chunks", payload, nil)
}

// PutCurriculum stores the unit/lesson hierarchy for a textbook.
func (c *Client) PutCurriculum(ctx context.Context, curriculum Curriculum) error {
	return c.send(ctx, http.MethodPut, "/textbooks/"+curriculum.TextbookID+"/curriculum", curriculum, nil)
}

// PutBookMeta stores the textbook-level metadata record.
func (c *Client) PutBookMeta(ctx context.Context, meta BookMeta) error {
	return c.send(ctx, http.MethodPut, "/textbooks/"+meta.TextbookID+"/meta", meta, nil)
}

// GetBookHash returns the stored whole-book content hash, or "" when
// the textbook has never been ingested.
func (c *Client) GetBookHash(ctx context.Context, textbookID string) (string, error) {
	var meta BookMeta
	found, err := c.get(ctx, "/textbooks/"+textbookID+"/meta", &meta)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return meta.ContentHash, nil
}

// ListChunks fetches all stored chunks for a textbook, the candidate
// set for retrieval.
func (c *Client) ListChunks(ctx context.Context, textbookID string) ([]retrieval.Chunk, error) {
	var result struct {
		Chunks []retrieval.Chunk `json:"chunks"`
	}
	found, err := c.get(ctx, "/textbooks/"+textbookID+"/chunks", &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return result.Chunks, nil
}

// DeleteTextbook removes a textbook and all of its chunks, curriculum,
// and metadata.
func (c *Client) DeleteTextbook(ctx context.Context, textbookID string) error {
	return c.send(ctx, http.MethodDelete, "/textbooks/"+textbookID, nil, nil)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// send issues a mutating request with retries. A nil payload sends an
// empty body.
func (c *Client) send(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		if err := classifyStatus(method, path, resp); err != nil {
			return err
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode %s %s: %w", method, path, err))
			}
		}
		return nil
	}
	return backoff.Retry(op, c.policy(ctx))
}

// get issues a GET with retries. Returns found=false on 404.
func (c *Client) get(ctx context.Context, path string, out any) (bool, error) {
	found := true
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("get %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			found = false
			return nil
		}
		if err := classifyStatus(http.MethodGet, path, resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	}
	if err := backoff.Retry(op, c.policy(ctx)); err != nil {
		return false, err
	}
	return found, nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = c.maxElapsed
	return backoff.WithContext(b, ctx)
}

func classifyStatus(method, path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return err
	}
	return backoff.Permanent(err)
}

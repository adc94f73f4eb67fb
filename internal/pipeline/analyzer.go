// Package pipeline orchestrates a full analysis pass: validation,
// classification, correction lookup, and history recording.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/engine"
	"github.com/aarunima248/fake-news/internal/session"
)

// ErrEmptyContent rejects analysis input that is empty or whitespace-only.
// ErrInvalidInput rejects metadata outside its allowed range. Both checks
// run before the model is touched.
var (
	ErrEmptyContent = errors.New("content is empty")
	ErrInvalidInput = errors.New("invalid input")
)

// batchConcurrency bounds how many batch items classify at once.
const batchConcurrency = 4

// Analyzer wires the inference engine, the correction catalog, and the
// session registry into one entry point. Safe for concurrent use.
type Analyzer struct {
	engine   *engine.Engine
	catalog  *corrections.Catalog
	sessions *session.Manager
}

// NewAnalyzer builds an analyzer over the given components.
func NewAnalyzer(eng *engine.Engine, catalog *corrections.Catalog, sessions *session.Manager) *Analyzer {
	return &Analyzer{engine: eng, catalog: catalog, sessions: sessions}
}

// Input is one analysis request. Content is required; everything else is
// optional context about where the content came from.
type Input struct {
	Content    string
	Source     string
	Author     string
	URL        string
	SharedBy   string
	ShareCount int
}

// validate normalizes the input and resolves its source. It never touches
// the model.
func (in Input) validate() (content string, src session.Source, err error) {
	content = strings.TrimSpace(in.Content)
	if content == "" {
		return "", "", ErrEmptyContent
	}
	src, err = session.ParseSource(in.Source)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.ShareCount < 0 {
		return "", "", fmt.Errorf("%w: share_count must not be negative, got %d", ErrInvalidInput, in.ShareCount)
	}
	return content, src, nil
}

// Analysis is the outcome of one Analyze call. Correction is nil when the
// content matched no catalog entry.
type Analysis struct {
	Record     session.Record     `json:"record"`
	Correction *corrections.Entry `json:"correction,omitempty"`
}

// Analyze validates, classifies, looks up a correction, and appends the new
// record to the session's history. Validation and inference failures leave
// the history untouched.
func (a *Analyzer) Analyze(ctx context.Context, sessionID string, in Input) (Analysis, error) {
	content, src, err := in.validate()
	if err != nil {
		return Analysis{}, err
	}
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	start := time.Now()
	res, err := a.engine.Classify(content)
	if err != nil {
		return Analysis{}, fmt.Errorf("classifying content: %w", err)
	}

	record := session.Record{
		ID:         uuid.NewString(),
		ContentID:  ContentID(content),
		Content:    content,
		Source:     src,
		Prediction: res.Verdict,
		Confidence: res.Confidence,
		Timestamp:  time.Now().UTC(),
		Metadata: session.Metadata{
			Author:        strings.TrimSpace(in.Author),
			URL:           strings.TrimSpace(in.URL),
			SharedBy:      strings.TrimSpace(in.SharedBy),
			ShareCount:    in.ShareCount,
			ContentLength: utf8.RuneCountInString(content),
			WordCount:     len(strings.Fields(content)),
		},
	}

	var correction *corrections.Entry
	if entry, ok := a.catalog.Find(content); ok {
		correction = &entry
	}

	if err := a.sessions.Get(sessionID).Append(record); err != nil {
		return Analysis{}, fmt.Errorf("recording analysis: %w", err)
	}

	slog.Debug("analysis recorded",
		"session", sessionID,
		"verdict", record.Prediction,
		"correction", correction != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Analysis{Record: record, Correction: correction}, nil
}

// ClassifyOnly classifies content without recording anything. The correction
// lookup still runs so callers can surface known misinformation context.
func (a *Analyzer) ClassifyOnly(ctx context.Context, content string) (engine.Result, *corrections.Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return engine.Result{}, nil, ErrEmptyContent
	}
	if err := ctx.Err(); err != nil {
		return engine.Result{}, nil, err
	}

	res, err := a.engine.Classify(content)
	if err != nil {
		return engine.Result{}, nil, fmt.Errorf("classifying content: %w", err)
	}
	var correction *corrections.Entry
	if entry, ok := a.catalog.Find(content); ok {
		correction = &entry
	}
	return res, correction, nil
}

// BatchResult is the outcome for one batch input at the same index. Failed
// items report an error in place without aborting the batch.
type BatchResult struct {
	Verdict    engine.Verdict     `json:"verdict,omitempty"`
	Confidence *float64           `json:"confidence,omitempty"`
	Correction *corrections.Entry `json:"correction,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ClassifyBatch classifies items concurrently, at most batchConcurrency at a
// time. Nothing is recorded. Only context cancellation aborts the whole
// batch.
func (a *Analyzer) ClassifyBatch(ctx context.Context, items []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, content := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, correction, err := a.ClassifyOnly(ctx, content)
			if err != nil {
				results[i] = BatchResult{Error: err.Error()}
				return nil
			}
			results[i] = BatchResult{
				Verdict:    res.Verdict,
				Confidence: res.Confidence,
				Correction: correction,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ContentID fingerprints analyzed content with SHA-256. Identical text maps
// to the same id, so repeat submissions are traceable across records.
func ContentID(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

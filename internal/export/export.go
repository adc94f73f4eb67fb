// Package export serializes session history for download. An export never
// mutates the history it reads; a failed export leaves no partial state
// behind beyond what was already written to the destination.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aarunima248/fake-news/internal/session"
)

// Format selects an export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for format names other than json or csv.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename returns a timestamped download name for the format.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("fakenews-export-%s.%s", now.UTC().Format("20060102-150405"), f)
}

// Write serializes records to w in the given format.
func Write(w io.Writer, f Format, records []session.Record) error {
	if f == FormatCSV {
		return WriteCSV(w, records)
	}
	return WriteJSON(w, records)
}

// WriteJSON writes the records as a pretty-printed JSON array. An empty
// history yields [] rather than null.
func WriteJSON(w io.Writer, records []session.Record) error {
	if records == nil {
		records = []session.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// csvHeader fixes the column order of CSV exports. Confidence sits last so
// margin-only models produce a trailing empty cell rather than a shifted row.
var csvHeader = []string{
	"content_id", "source", "prediction", "timestamp", "author", "url",
	"shared_by", "share_count", "content_length", "word_count", "confidence",
}

// WriteCSV writes one row per record after a header row. An empty history
// yields just the header.
func WriteCSV(w io.Writer, records []session.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		confidence := ""
		if r.Confidence != nil {
			confidence = strconv.FormatFloat(*r.Confidence, 'f', 2, 64)
		}
		row := []string{
			r.ContentID,
			string(r.Source),
			string(r.Prediction),
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Metadata.Author,
			r.Metadata.URL,
			r.Metadata.SharedBy,
			strconv.Itoa(r.Metadata.ShareCount),
			strconv.Itoa(r.Metadata.ContentLength),
			strconv.Itoa(r.Metadata.WordCount),
			confidence,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

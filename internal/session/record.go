// Package session keeps per-session analysis history. Each session owns an
// append-only store that lives in memory only: nothing survives a restart,
// and idle sessions expire.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarunima248/fake-news/internal/engine"
)

// Source identifies where a piece of analyzed content came from.
type Source string

const (
	SourceNewsArticle Source = "news_article"
	SourceTwitter     Source = "twitter"
	SourceFacebook    Source = "facebook"
	SourceWhatsApp    Source = "whatsapp"
	SourceOther       Source = "other"
)

// ParseSource normalizes a caller-supplied source name. An empty name maps
// to SourceOther; anything outside the known set is rejected.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return SourceOther, nil
	case SourceNewsArticle:
		return SourceNewsArticle, nil
	case SourceTwitter:
		return SourceTwitter, nil
	case SourceFacebook:
		return SourceFacebook, nil
	case SourceWhatsApp:
		return SourceWhatsApp, nil
	case SourceOther:
		return SourceOther, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Record is one appended analysis outcome, immutable once stored. ContentID
// is the full SHA-256 digest of the trimmed content; repeat submissions of
// the same text share a ContentID but keep their own Record.
type Record struct {
	ID         string         `json:"id"`
	ContentID  string         `json:"content_id"`
	Content    string         `json:"content"`
	Source     Source         `json:"source"`
	Prediction engine.Verdict `json:"prediction"`
	Confidence *float64       `json:"confidence"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   Metadata       `json:"metadata"`
}

// Metadata carries the caller-supplied context about the content plus the
// derived length figures. The caller fields are all optional.
type Metadata struct {
	Author        string `json:"author,omitempty"`
	URL           string `json:"url,omitempty"`
	SharedBy      string `json:"shared_by,omitempty"`
	ShareCount    int    `json:"share_count"`
	ContentLength int    `json:"content_length"`
	WordCount     int    `json:"word_count"`
}

// Stats summarizes a session's history. Real and Fake always sum to Total.
// AvgConfidence is nil when no record carries a confidence value.
type Stats struct {
	Total          int        `json:"total"`
	Real           int        `json:"real"`
	Fake           int        `json:"fake"`
	RealPct        float64    `json:"real_pct"`
	FakePct        float64    `json:"fake_pct"`
	AvgConfidence  *float64   `json:"avg_confidence,omitempty"`
	LastAnalyzedAt *time.Time `json:"last_analyzed_at,omitempty"`
}

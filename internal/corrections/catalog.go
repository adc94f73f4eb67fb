// Package corrections maps known misinformation phrasings to corrective
// context. The catalog is a small ordered table fixed at startup; lookup is
// case-insensitive substring matching and the first matching entry wins.
package corrections

import (
	"errors"
	"fmt"
	"strings"
)

// Entry pairs a misinformation pattern with its correction.
type Entry struct {
	Pattern    string `json:"pattern" yaml:"pattern"`
	Correction string `json:"correction" yaml:"correction"`
	Topic      string `json:"topic" yaml:"topic"`
	SourceURL  string `json:"source_url" yaml:"source_url"`
}

// Catalog is an ordered, immutable correction table. Safe for concurrent use.
type Catalog struct {
	entries  []Entry
	patterns []string // lowercased, parallel to entries
}

// NewCatalog validates entries and compiles them into a catalog, preserving
// their order.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("corrections catalog is empty")
	}
	c := &Catalog{
		entries:  make([]Entry, len(entries)),
		patterns: make([]string, len(entries)),
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Pattern) == "" {
			return nil, fmt.Errorf("correction entry %d has an empty pattern", i)
		}
		if strings.TrimSpace(e.Correction) == "" {
			return nil, fmt.Errorf("correction entry %d (%q) has an empty correction", i, e.Pattern)
		}
		c.entries[i] = e
		c.patterns[i] = strings.ToLower(e.Pattern)
	}
	return c, nil
}

func mustCatalog(entries []Entry) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the compiled-in catalog used when no external catalog file
// is configured.
func Default() *Catalog { return mustCatalog(defaultEntries) }

// Find scans content for a known misinformation pattern. Matching is
// case-insensitive substring search in catalog order; the first hit is
// returned. ok is false when nothing matches.
func (c *Catalog) Find(content string) (entry Entry, ok bool) {
	lowered := strings.ToLower(content)
	for i, pattern := range c.patterns {
		if strings.Contains(lowered, pattern) {
			return c.entries[i], true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the catalog in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

var defaultEntries = []Entry{
	{
		Pattern:    "vaccine causes autism",
		Correction: "Large studies covering millions of children found no link between vaccines and autism. The 1998 paper that claimed one was retracted for data fraud and its author was struck off the medical register.",
		Topic:      "health",
		SourceURL:  "https://www.cdc.gov/vaccinesafety/concerns/autism.html",
	},
	{
		Pattern:    "5g causes covid",
		Correction: "Viruses cannot travel on radio waves or mobile networks. COVID-19 spread in many countries that had no 5G coverage at all.",
		Topic:      "technology",
		SourceURL:  "https://www.who.int/emergencies/diseases/novel-coronavirus-2019/advice-for-public/myth-busters",
	},
	{
		Pattern:    "earth is flat",
		Correction: "The earth's sphericity has been measured since antiquity and is confirmed daily by satellite operations, circumnavigation, and direct observation from orbit.",
		Topic:      "science",
		SourceURL:  "https://www.nasa.gov/image-article/blue-marble-image-earth-from-apollo-17/",
	},
	{
		Pattern:    "climate change is a hoax",
		Correction: "Multiple independent datasets show unequivocal warming driven by human greenhouse gas emissions, a finding endorsed by every major national science academy.",
		Topic:      "environment",
		SourceURL:  "https://climate.nasa.gov/evidence/",
	},
}

package corrections

import (
	"strings"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Pattern: "vaccine causes autism", Correction: "No link has been found.", Topic: "health"},
		{Pattern: "earth is flat", Correction: "The earth is round.", Topic: "science"},
	}
}

func TestFind_CaseInsensitive(t *testing.T) {
	c, err := NewCatalog(testEntries())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	entry, ok := c.Find("VACCINE CAUSES AUTISM today, claims post")
	if !ok {
		t.Fatal("Find returned ok = false, want a match")
	}
	if entry.Topic != "health" {
		t.Errorf("topic = %q, want %q", entry.Topic, "health")
	}
}

func TestFind_SubstringAnywhere(t *testing.T) {
	c, err := NewCatalog(testEntries())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	content := "Shocking report proves the Earth is FLAT according to insiders"
	entry, ok := c.Find(content)
	if !ok {
		t.Fatal("Find returned ok = false, want a match")
	}
	if entry.Pattern != "earth is flat" {
		t.Errorf("pattern = %q, want %q", entry.Pattern, "earth is flat")
	}
}

func TestFind_NoMatch(t *testing.T) {
	c, err := NewCatalog(testEntries())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if entry, ok := c.Find("perfectly ordinary local news item"); ok {
		t.Errorf("Find returned entry %q, want no match", entry.Pattern)
	}
}

func TestFind_EmptyContent(t *testing.T) {
	c, err := NewCatalog(testEntries())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if _, ok := c.Find(""); ok {
		t.Error("Find on empty content returned a match")
	}
}

func TestFind_FirstMatchWins(t *testing.T) {
	c, err := NewCatalog([]Entry{
		{Pattern: "miracle cure", Correction: "first"},
		{Pattern: "cure", Correction: "second"},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	entry, ok := c.Find("this miracle cure is amazing")
	if !ok {
		t.Fatal("Find returned ok = false, want a match")
	}
	if entry.Correction != "first" {
		t.Errorf("correction = %q, want %q: catalog order decides precedence", entry.Correction, "first")
	}
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty catalog", nil},
		{"empty pattern", []Entry{{Pattern: "  ", Correction: "text"}}},
		{"empty correction", []Entry{{Pattern: "earth is flat", Correction: ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.entries); err == nil {
				t.Error("NewCatalog succeeded, want error")
			}
		})
	}
}

func TestDefault_CoversKnownClaims(t *testing.T) {
	c := Default()

	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
	for _, content := range []string{
		"New study says the VACCINE CAUSES AUTISM in toddlers",
		"Leaked memo: 5G causes COVID symptoms",
		"Pilots admit the earth is flat",
		"Senator insists climate change is a hoax",
	} {
		if _, ok := c.Find(content); !ok {
			t.Errorf("Find(%q) found nothing, want a default entry", content)
		}
	}
}

func TestDefault_EntriesAreCopies(t *testing.T) {
	c := Default()

	entries := c.Entries()
	entries[0].Correction = "tampered"

	fresh := c.Entries()
	if strings.Contains(fresh[0].Correction, "tampered") {
		t.Error("mutating the returned slice changed the catalog")
	}
}

package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromHTML_SkipsScriptsAndStyles(t *testing.T) {
	doc := `<html><head>
		<style>body { color: red }</style>
		<script>alert("ignored")</script>
	</head><body>
		<h1>Breaking News</h1>
		<p>The story <b>continues</b> here.</p>
		<noscript>enable javascript</noscript>
		<iframe src="ad.html">ad text</iframe>
	</body></html>`

	text, err := FromHTML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}

	want := "Breaking News The story continues here."
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	for _, leaked := range []string{"alert", "color", "javascript", "ad text"} {
		if strings.Contains(text, leaked) {
			t.Errorf("text %q leaked hidden content %q", text, leaked)
		}
	}
}

func TestFromHTML_Fragment(t *testing.T) {
	text, err := FromHTML(strings.NewReader("<p>just a fragment</p>"))
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if text != "just a fragment" {
		t.Errorf("text = %q, want %q", text, "just a fragment")
	}
}

func TestFromFile_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.txt")
	if err := os.WriteFile(path, []byte("  plain article body\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if text != "plain article body" {
		t.Errorf("text = %q, want %q", text, "plain article body")
	}
}

func TestFromFile_HTMLExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.html")
	if err := os.WriteFile(path, []byte("<body><p>rendered text</p><script>x</script></body>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if text != "rendered text" {
		t.Errorf("text = %q, want %q", text, "rendered text")
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("FromFile succeeded on a missing file, want error")
	}
}

func TestFromFile_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := FromFile(path); err == nil {
		t.Error("FromFile succeeded on binary garbage, want error")
	}
}

func TestFromFile_MalformedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := FromFile(path); err == nil {
		t.Error("FromFile succeeded on a malformed pdf, want error")
	}
}

func TestNormalizeSpace(t *testing.T) {
	got := normalizeSpace("  spread \n\n out\ttext  ")
	if got != "spread out text" {
		t.Errorf("normalizeSpace = %q, want %q", got, "spread out text")
	}
}

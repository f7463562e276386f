package insights

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncatePreviewShortContent(t *testing.T) {
	content := "short page text"
	if got := truncatePreview(content); got != content {
		t.Errorf("short content should pass through unchanged, got %q", got)
	}
}

func TestTruncatePreviewCountsCharacters(t *testing.T) {
	long := strings.Repeat("a", ContentPreviewLimit+500)
	got := truncatePreview(long)
	if utf8.RuneCountInString(got) != ContentPreviewLimit {
		t.Errorf("preview length = %d characters, want %d", utf8.RuneCountInString(got), ContentPreviewLimit)
	}
}

func TestTruncatePreviewKeepsRunesIntact(t *testing.T) {
	// Multi-byte characters straddling the limit must not be split.
	long := strings.Repeat("я", ContentPreviewLimit+10)
	got := truncatePreview(long)

	if !utf8.ValidString(got) {
		t.Fatal("truncated preview contains an invalid UTF-8 sequence")
	}
	if utf8.RuneCountInString(got) != ContentPreviewLimit {
		t.Errorf("preview length = %d characters, want %d", utf8.RuneCountInString(got), ContentPreviewLimit)
	}
	for _, r := range got {
		if r != 'я' {
			t.Fatalf("unexpected rune %q in preview", r)
		}
	}
}

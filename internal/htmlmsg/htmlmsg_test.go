package htmlmsg

import (
	"strings"
	"testing"
)

func TestSummarizePrefersErrorMessageElement(t *testing.T) {
	html := `
<html>
  <head><title>Site name</title></head>
  <body>
    <h1>Page not found</h1>
    <div class="messages--error">
      Access denied for user anonymous.
    </div>
  </body>
</html>`

	if got := Summarize(html); got != "Access denied for user anonymous." {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarizeFallsBackToHeadingThenTitle(t *testing.T) {
	withHeading := `<html><head><title>Site</title></head><body><h1>Server error</h1></body></html>`
	if got := Summarize(withHeading); got != "Server error" {
		t.Fatalf("heading fallback = %q", got)
	}

	titleOnly := `<html><head><title>Maintenance mode</title></head><body></body></html>`
	if got := Summarize(titleOnly); got != "Maintenance mode" {
		t.Fatalf("title fallback = %q", got)
	}
}

func TestSummarizePassesPlainTextThrough(t *testing.T) {
	if got := Summarize("  just a plain\n message  "); got != "just a plain message" {
		t.Fatalf("plain text = %q", got)
	}
	if got := Summarize("   "); got != "" {
		t.Fatalf("blank input should summarize to empty, got %q", got)
	}
}

func TestSummarizeTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", maxSummaryRunes+50)
	got := Summarize(long)
	if len([]rune(got)) != maxSummaryRunes+3 {
		t.Fatalf("expected truncation with ellipsis, got %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("missing ellipsis in %q", got)
	}
}

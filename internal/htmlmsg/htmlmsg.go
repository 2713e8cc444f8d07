package htmlmsg

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Package htmlmsg distills readable messages out of HTML error pages.

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxSummaryRunes  = 200
)

// Summarize extracts a short human-readable message from an error page.
// It prefers an explicit error message element, then the first heading,
// then the page title. Non-HTML input comes back trimmed and truncated.
func Summarize(body string) string {
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "<") {
		return truncate(collapseSpace(trimmed))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(body)))
	if err != nil {
		return truncate(collapseSpace(trimmed))
	}

	text := func(sel string) string {
		return collapseSpace(doc.Find(sel).First().Text())
	}

	msg := firstNonEmpty(
		text(".messages--error"),
		text(".messages.error"),
		text(".error"),
		text("h1"),
		text("title"),
	)
	if msg == "" {
		msg = collapseSpace(doc.Text())
	}
	return truncate(msg)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSummaryRunes {
		return s
	}
	return string(runes[:maxSummaryRunes]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

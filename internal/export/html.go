// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/format"
	"github.com/medibot/medibot-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports sessions to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

const htmlCSS = `    <style>
        body { font-family: system-ui, sans-serif; background: #f5f7fb; color: #1f2937; margin: 0; }
        .container { max-width: 800px; margin: 0 auto; padding: 24px; }
        .meta { color: #6b7280; font-size: 0.9em; margin-bottom: 24px; }
        .message { border-radius: 18px; padding: 12px 16px; margin: 12px 0; white-space: pre-wrap; }
        .user { background: #2563eb; color: #fff; margin-left: 20%; }
        .bot { background: #fff; border: 1px solid #e5e7eb; margin-right: 20%; }
        .sender { font-weight: 600; font-size: 0.85em; margin-bottom: 4px; }
        footer { color: #9ca3af; font-size: 0.8em; margin-top: 32px; }
    </style>
`

// Export implements Exporter. Text is escaped; bot markdown is kept as
// preformatted text.
func (e *HTMLExporter) Export(cs model.ChatSession) ([]byte, error) {
	if len(cs.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(cs.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"medibot-tui\">\n")
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n<body>\n    <div class=\"container\">\n")
	sb.WriteString(fmt.Sprintf("        <h1>%s</h1>\n", html.EscapeString(cs.Title)))

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("        <div class=\"meta\">Session %d &middot; %s &middot; %d messages</div>\n",
			cs.ID, formatTimestamp(cs.CreatedAt()), len(cs.Messages)))
	}

	for _, msg := range cs.Messages {
		text := strings.TrimSpace(msg.Text)
		if msg.Sender == model.SenderBot && e.options.FormatReplies {
			text = format.Format(text)
		}
		sb.WriteString(fmt.Sprintf("        <div class=\"message %s\"><div class=\"sender\">%s</div>%s</div>\n",
			html.EscapeString(string(msg.Sender)),
			html.EscapeString(msg.Sender.DisplayName()),
			html.EscapeString(text)))
	}

	sb.WriteString(fmt.Sprintf("        <footer>Exported from MediBot on %s</footer>\n", formatTimestamp(time.Now())))
	sb.WriteString("    </div>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType implements Exporter.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a session to one output format.
type Exporter interface {
	// Export returns the encoded session.
	Export(cs model.ChatSession) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat accepts the usual spellings of each format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written (default: current directory).
	OutputDir string

	// OpenAfterExport hands the file to the desktop when supported.
	OpenAfterExport bool

	// IncludeMetadata adds a header with the session id, date and counts.
	IncludeMetadata bool

	// FormatReplies runs bot messages through the response formatter.
	FormatReplies bool

	// Opener overrides the desktop opener, for tests.
	Opener capability.Opener
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
		FormatReplies:   true,
	}
}

// New returns the exporter for f.
func New(f Format, opts *Options) (Exporter, error) {
	switch f {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", f)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile exports cs in format f and returns the written path.
func ToFile(cs model.ChatSession, f Format, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	exporter, err := New(f, opts)
	if err != nil {
		return "", err
	}

	content, err := exporter.Export(cs)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("medibot_%s_%d%s",
		sanitizeFilename(cs.Title),
		cs.ID,
		exporter.FileExtension(),
	)
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)

	// Conversations are health data: owner-only permissions.
	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	log.Printf("EXPORT_WRITTEN | path=%s format=%s bytes=%d", outputPath, f, len(content))

	if opts.OpenAfterExport {
		opener := opts.Opener
		if opener == nil {
			opener = capability.NewSystemOpener()
		}
		if err := opener.Open(outputPath); err != nil {
			// Non-fatal: the file was still written.
			log.Printf("EXPORT_OPEN_FAILED | path=%s error=%v", outputPath, err)
		}
	}

	return outputPath, nil
}

// ActiveSession wraps the active conversation as an unarchived session so
// it can be exported with the same code.
func ActiveSession(msgs []model.Message, now time.Time) model.ChatSession {
	return model.NewChatSession(now, msgs)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50, "")

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		'…':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := make([]rune, 0, len(s))
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	out := strings.Trim(string(result), "-_")
	if out == "" {
		return "conversation"
	}
	return out
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

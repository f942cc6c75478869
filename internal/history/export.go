// Package history exports the in-memory conversation to a transcript file.
// Nothing here runs implicitly; the conversation lives only as long as the
// process unless the user asks for an export.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/diogo/adsagent/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// DefaultTitle heads transcripts that were not given a title
const DefaultTitle = "Google Ads Assistant Conversation"

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format            ExportFormat
	Title             string
	Backend           string // backend URL, recorded in the header when set
	IncludeTimestamps bool
	Now               func() time.Time
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:            ExportFormatMarkdown,
		Title:             DefaultTitle,
		IncludeTimestamps: true,
		Now:               time.Now,
	}
}

func (o ExportOptions) title() string {
	if strings.TrimSpace(o.Title) == "" {
		return DefaultTitle
	}
	return o.Title
}

func (o ExportOptions) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// FormatFromPath picks the export format from a file extension.
// ".json" selects JSON; everything else is Markdown.
func FormatFromPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// ExportMarkdown renders messages as a Markdown transcript
func ExportMarkdown(messages []models.Message, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(opts.title())
	sb.WriteString("\n\n")

	sb.WriteString("**Exported:** ")
	sb.WriteString(opts.now().Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	if opts.Backend != "" {
		sb.WriteString("**Backend:** ")
		sb.WriteString(opts.Backend)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range messages {
		sb.WriteString("## ")
		sb.WriteString(msg.Role.Label())
		if opts.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type exportTranscript struct {
	Title      string          `json:"title"`
	Backend    string          `json:"backend,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []exportMessage `json:"messages"`
}

// ExportJSON encodes messages as an indented JSON transcript
func ExportJSON(messages []models.Message, opts ExportOptions) ([]byte, error) {
	export := exportTranscript{
		Title:      opts.title(),
		Backend:    opts.Backend,
		ExportedAt: opts.now(),
		Messages:   make([]exportMessage, len(messages)),
	}

	for i, msg := range messages {
		export.Messages[i] = exportMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if opts.IncludeTimestamps && !msg.Timestamp.IsZero() {
			ts := msg.Timestamp
			export.Messages[i].Timestamp = &ts
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

// Export renders messages in opts.Format
func Export(messages []models.Message, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportJSON(messages, opts)
	case ExportFormatMarkdown, "":
		return []byte(ExportMarkdown(messages, opts)), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", opts.Format)
	}
}

// WriteTranscript writes messages to path, choosing the format from its
// extension, and returns the absolute path written.
func WriteTranscript(path string, messages []models.Message, opts ExportOptions) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("export path is empty")
	}
	if len(messages) == 0 {
		return "", errors.New("nothing to export: the conversation is empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve export path")
	}

	opts.Format = FormatFromPath(abs)
	data, err := Export(messages, opts)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(abs); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(err, "failed to create export directory")
		}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write transcript")
	}
	return abs, nil
}

// DefaultFilename returns a timestamped transcript name such as
// adsagent-20260102-150405.md
func DefaultFilename(t time.Time, format ExportFormat) string {
	ext := ".md"
	if format == ExportFormatJSON {
		ext = ".json"
	}
	return "adsagent-" + t.Format("20060102-150405") + ext
}

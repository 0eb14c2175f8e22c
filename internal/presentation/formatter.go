package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"gopkg.in/yaml.v3"
)

// Format names an output format for registry listings.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: table, json, yaml)", s)
	}
}

// Column limits for the table view.
const (
	maxPathWidth    = 60
	maxPreviewWidth = 40
	ellipsis        = "…"
	columnGap       = "  "
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	previewStyle = lipgloss.NewStyle().Italic(true)
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	now    func() time.Time
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
		now:    time.Now,
	}
}

// WithClock sets the time used for relative ages.
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	f.now = now
	return f
}

// Format writes entries in the given format.
func (f *Formatter) Format(format Format, entries []EntryDTO) error {
	switch format {
	case FormatJSON:
		return f.FormatJSON(entries)
	case FormatYAML:
		return f.FormatYAML(entries)
	default:
		return f.FormatTable(entries)
	}
}

// FormatJSON writes entries as an indented JSON array.
func (f *Formatter) FormatJSON(entries []EntryDTO) error {
	if entries == nil {
		entries = []EntryDTO{}
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// FormatYAML writes entries as a YAML sequence.
func (f *Formatter) FormatYAML(entries []EntryDTO) error {
	if entries == nil {
		entries = []EntryDTO{}
	}
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(entries); err != nil {
		return err
	}
	return encoder.Close()
}

// FormatTable writes an aligned table, most recent first.
func (f *Formatter) FormatTable(entries []EntryDTO) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(f.writer, mutedStyle.Render("No recent files"))
		return err
	}

	now := f.now()
	header := []string{"#", "NAME", "MODIFIED", "PATH", "PREVIEW"}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		preview := "-"
		if e.Preview != nil {
			preview = truncate.StringWithTail(oneLine(*e.Preview), maxPreviewWidth, ellipsis)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Name,
			RelativeAge(e.LastModified, now),
			truncate.StringWithTail(e.Path, maxPathWidth, ellipsis),
			preview,
		}
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = ansi.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], ansi.StringWidth(cell))
		}
	}

	var b strings.Builder
	writeRow(&b, header, widths, func(int) lipgloss.Style { return headerStyle })
	for _, row := range rows {
		writeRow(&b, row, widths, cellStyle)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func cellStyle(col int) lipgloss.Style {
	switch col {
	case 1:
		return nameStyle
	case 0, 2:
		return mutedStyle
	case 4:
		return previewStyle
	default:
		return lipgloss.NewStyle()
	}
}

func writeRow(b *strings.Builder, cells []string, widths []int, style func(int) lipgloss.Style) {
	var line strings.Builder
	for i, cell := range cells {
		if i > 0 {
			line.WriteString(columnGap)
		}
		pad := widths[i] - ansi.StringWidth(cell)
		line.WriteString(style(i).Render(cell))
		if i < len(cells)-1 && pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		}
	}
	b.WriteString(line.String())
	b.WriteByte('\n')
}

// oneLine collapses whitespace runs, newlines included, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

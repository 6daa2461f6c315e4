package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Formatter writes command results in one output format.
type Formatter interface {
	// Format writes the given data to the output writer
	Format(data any) error
}

// TextWriter is implemented by results with their own text rendering
type TextWriter interface {
	WriteText(w io.Writer, styles Styles) error
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables colored output for text formatters
	NoColor bool
	// Compact enables compact output (no indentation for JSON/YAML)
	Compact bool
}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{Writer: os.Stdout}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "yaml":
		return &YAMLFormatter{opts: opts}, nil
	case "text", "":
		return &TextFormatter{opts: opts, styles: NewStyles(opts.NoColor)}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

// Format writes data as JSON
func (f *JSONFormatter) Format(data any) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

// Format writes data as YAML
func (f *YAMLFormatter) Format(data any) error {
	encoder := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent(2)
	}
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter formats output for people
type TextFormatter struct {
	opts   *FormatterOptions
	styles Styles
}

// Format writes data as text. Data must be a string, a fmt.Stringer,
// a TextWriter or a *Table.
func (f *TextFormatter) Format(data any) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(f.opts.Writer, v)
		return err
	case TextWriter:
		return v.WriteText(f.opts.Writer, f.styles)
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.opts.Writer, v.String())
		return err
	default:
		return fmt.Errorf("text formatter cannot render %T", data)
	}
}

// Styles are the lipgloss styles of text output
type Styles struct {
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Label   lipgloss.Style
}

// NewStyles returns the text styles; noColor strips all colors and
// emphasis.
func NewStyles(noColor bool) Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return Styles{Header: plain, Muted: plain, Success: plain, Warning: plain, Error: plain, Label: plain}
	}
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Label:   lipgloss.NewStyle().Bold(true),
	}
}

// Table is a text table with a header row. JSON and YAML output
// marshal the Items instead of the rendered cells.
type Table struct {
	Headers []string
	Rows    [][]string
	Empty   string
	Items   any
}

// MarshalJSON encodes the underlying items
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Items)
}

// MarshalYAML encodes the underlying items
func (t *Table) MarshalYAML() (any, error) {
	return t.Items, nil
}

// WriteText renders aligned columns
func (t *Table) WriteText(w io.Writer, styles Styles) error {
	if len(t.Rows) == 0 {
		empty := t.Empty
		if empty == "" {
			empty = "Nothing to show."
		}
		_, err := fmt.Fprintln(w, styles.Muted.Render(empty))
		return err
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := lipgloss.Width(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Render(cell) + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	if _, err := fmt.Fprintln(w, line(t.Headers, styles.Header)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(w, line(row, lipgloss.NewStyle())); err != nil {
			return err
		}
	}
	return nil
}

// Compile-time verification that formatters implement Formatter
var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
var _ TextWriter = (*Table)(nil)

package ux

import (
	"bytes"
	"strings"
	"testing"
)

type mentorRow struct {
	Email     string `json:"email" yaml:"email"`
	Expertise string `json:"expertise" yaml:"expertise"`
}

func sampleTable() *Table {
	items := []mentorRow{
		{Email: "grace@example.com", Expertise: "Compilers"},
		{Email: "al@example.com", Expertise: "AI"},
	}
	t := &Table{Headers: []string{"EMAIL", "EXPERTISE"}, Items: items}
	for _, m := range items {
		t.Rows = append(t.Rows, []string{m.Email, m.Expertise})
	}
	return t
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "YAML", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSONFormatterMarshalsTableItems(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(sampleTable()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"email": "grace@example.com"`) {
		t.Errorf("JSON output missing item field: %s", output)
	}
	if strings.Contains(output, "EXPERTISE") {
		t.Errorf("JSON output must not contain table headers: %s", output)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(mentorRow{Email: "a@example.com"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if strings.Count(buf.String(), "\n") > 1 {
		t.Errorf("Compact JSON should be single line, got: %s", buf.String())
	}
}

func TestYAMLFormatterMarshalsTableItems(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(sampleTable()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "email: grace@example.com") {
		t.Errorf("YAML output missing expected field: %s", output)
	}
	if !strings.Contains(output, "expertise: AI") {
		t.Errorf("YAML output missing expected field: %s", output)
	}
}

func TestTextFormatterTable(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(sampleTable()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"EMAIL              EXPERTISE",
		"grace@example.com  Compilers",
		"al@example.com     AI",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTextFormatterEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	formatter, _ := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})

	if err := formatter.Format(&Table{Headers: []string{"A"}, Empty: "No mentors match your search."}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "No mentors match your search." {
		t.Errorf("output = %q", got)
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "string data",
			data: "hello world",
			want: "hello world",
		},
		{
			name:    "struct without text rendering",
			data:    mentorRow{Email: "a@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}

			err = formatter.Format(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("Format() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := strings.TrimSpace(buf.String())
				if output != tt.want {
					t.Errorf("Format() output = %q, want %q", output, tt.want)
				}
			}
		})
	}
}

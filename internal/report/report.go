// Package report renders outcomes for people: plain text, a Markdown table,
// HTML converted from that Markdown, or indented JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gorandtest/domain/core"
	"gorandtest/domain/randtest"
)

// Format selects a rendering
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", core.NewInvalidConfigurationError(nil,
		fmt.Sprintf("unknown output format %q, expected text, markdown, json or html", s))
}

// Render writes outcome to w in format
func Render(w io.Writer, outcome *randtest.Outcome, format Format) error {
	var out []byte
	switch format {
	case FormatText, "":
		out = []byte(outcome.String() + "\n")
	case FormatMarkdown:
		out = []byte(Markdown(outcome))
	case FormatHTML:
		out = HTML(outcome)
	case FormatJSON:
		b, err := json.MarshalIndent(outcome.Record(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode outcome: %w", err)
		}
		out = append(b, '\n')
	default:
		return core.NewInvalidConfigurationError(nil, fmt.Sprintf("unknown output format %q", format))
	}
	_, err := w.Write(out)
	return err
}

// Markdown renders the outcome as a two-column table
func Markdown(outcome *randtest.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Randomization test %s\n\n", outcome.RunID())
	b.WriteString("| Field | Value |\n|---|---|\n")

	p := "undefined"
	if v, err := outcome.PValue(); err == nil {
		p = randtest.FormatFloat(v)
	}
	rows := [][2]string{
		{"Method", string(outcome.Method())},
		{"Alternative", string(outcome.Alternative())},
		{"MCT(data of group A)", randtest.FormatFloat(outcome.MCTA())},
		{"MCT(data of group B)", randtest.FormatFloat(outcome.MCTB())},
		{"Observed test statistic value", randtest.FormatFloat(outcome.Statistic())},
		{"Number of successes", fmt.Sprint(outcome.Hits())},
		{"Number of permutations", fmt.Sprint(outcome.Permutations())},
		{"p value", p},
		{"seed", outcome.SeedString()},
		{"Workers", fmt.Sprint(outcome.Workers())},
		{"Data hash", core.Hash(outcome.DataHash()).Short()},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
	}
	if !outcome.StartedAt().IsZero() {
		fmt.Fprintf(&b, "\nStarted %s, took %s.\n",
			outcome.StartedAt().UTC().Format("2006-01-02 15:04:05 MST"), outcome.Duration())
	}
	return b.String()
}

// HTML converts the Markdown report into a standalone page
func HTML(outcome *randtest.Outcome) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Randomization test " + outcome.RunID().String(),
	})
	return markdown.ToHTML([]byte(Markdown(outcome)), p, renderer)
}

// WriteAll renders several outcomes separated by blank lines, used by list views
func WriteAll(w io.Writer, outcomes []*randtest.Outcome, format Format) error {
	if format == FormatJSON {
		records := make([]randtest.Record, 0, len(outcomes))
		for _, o := range outcomes {
			records = append(records, o.Record())
		}
		b, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	}
	var buf bytes.Buffer
	for i, o := range outcomes {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := Render(&buf, o, format); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

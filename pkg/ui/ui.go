// Package ui renders run reports: phase summaries, the timing table, diffs,
// advisories and errors, as rich terminal output, plain text or JSON.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/output/styles"
	"github.com/arthur-debert/treegen/pkg/pipeline"
	"github.com/arthur-debert/treegen/pkg/timing"
	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
)

// Renderer writes reports to one output.
type Renderer struct {
	out    io.Writer
	format Format
}

// NewRenderer resolves FormatAuto against output: terminals get
// FormatTerminal, anything that is not a file gets FormatText.
func NewRenderer(format Format, output io.Writer) *Renderer {
	if format == FormatAuto {
		format = FormatText
		if file, ok := output.(*os.File); ok {
			format = DetectFormat(file)
		}
	}
	return &Renderer{out: output, format: format}
}

func (r *Renderer) Format() Format { return r.format }

func (r *Renderer) styled(style, text string) string {
	if r.format != FormatTerminal {
		return text
	}
	return styles.Render(style, text)
}

// RenderResult prints everything a successful run reports, in order:
// summaries, timing, diffs, advisories.
func (r *Renderer) RenderResult(res *pipeline.Result, dryRun bool) error {
	if r.format == FormatJSON {
		return r.renderJSON(res, dryRun)
	}
	if dryRun {
		fmt.Fprintln(r.out, r.styled("DryRunBanner", "DRY RUN: no files were written"))
	}
	r.renderSummaries(res.Summaries)
	if err := r.renderTiming(res.Summaries, res.Totals); err != nil {
		return err
	}
	r.renderDiffs(res.Diffs)
	r.renderAdvisories(res.Advisories)
	return nil
}

func (r *Renderer) renderSummaries(summaries []timing.ExecutionSummary) {
	for _, s := range summaries {
		fmt.Fprintln(r.out, r.styled("Phase", s.String()))
	}
}

func (r *Renderer) renderTiming(summaries []timing.ExecutionSummary, totals timing.Totals) error {
	if r.format != FormatTerminal {
		fmt.Fprintln(r.out, totals.String())
		return nil
	}

	data := pterm.TableData{{"Phase", "Time"}}
	for _, s := range summaries {
		data = append(data, []string{s.Name, fmt.Sprintf("%.2fs", s.Elapsed.Seconds())})
	}
	data = append(data, []string{"untracked", fmt.Sprintf("%.2fs", totals.Untracked().Seconds())})
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render timing table")
	}
	fmt.Fprintln(r.out, table)
	fmt.Fprintln(r.out, r.styled("Total", totals.String()))
	return nil
}

// DiffStatLine is the line printed above each diff.
func DiffStatLine(d pipeline.FileDiff) string {
	return fmt.Sprintf("%s: +%d -%d", d.Path, d.Added, d.Deleted)
}

func (r *Renderer) renderDiffs(diffs []pipeline.FileDiff) {
	for _, d := range diffs {
		fmt.Fprintln(r.out, r.styled("Path", DiffStatLine(d)))
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintln(r.out, r.diffLine(line))
		}
	}
}

func (r *Renderer) diffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return r.styled("Muted", line)
	case strings.HasPrefix(line, "@@"):
		return r.styled("DiffHunk", line)
	case strings.HasPrefix(line, "+"):
		return r.styled("DiffAdd", line)
	case strings.HasPrefix(line, "-"):
		return r.styled("DiffDelete", line)
	default:
		return line
	}
}

func (r *Renderer) renderAdvisories(advisories []pipeline.Advisory) {
	for _, a := range advisories {
		fmt.Fprintln(r.out, r.markdown(a.Text))
	}
}

// markdown renders through glamour on terminals; the source is already
// readable as plain text.
func (r *Renderer) markdown(text string) string {
	if r.format != FormatTerminal {
		return text
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return rendered
}

// RenderError prints a fatal error. Details of a TreegenError follow on
// their own lines, sorted by key.
func (r *Renderer) RenderError(err error) {
	if r.format == FormatJSON {
		doc := map[string]interface{}{"error": err.Error()}
		if code := errors.GetErrorCode(err); code != "" {
			doc["code"] = code
		}
		if details := errors.GetErrorDetails(err); len(details) > 0 {
			doc["details"] = details
		}
		_ = r.encode(doc)
		return
	}
	label := "Error:"
	if r.format == FormatTerminal {
		label = styles.MergeStyles("Header", "Error").Render(label)
	}
	fmt.Fprintln(r.out, label+" "+err.Error())
}

// RenderMessage prints a line of plain text.
func (r *Renderer) RenderMessage(msg string) {
	if r.format == FormatJSON {
		_ = r.encode(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(r.out, msg)
}

type jsonSummary struct {
	Name    string  `json:"name"`
	Seconds float64 `json:"seconds"`
	Text    string  `json:"text"`
}

type jsonDiff struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
	Diff    string `json:"diff"`
}

type jsonReport struct {
	DryRun     bool          `json:"dry_run"`
	TopSrcDir  string        `json:"topsrcdir"`
	TopObjDir  string        `json:"topobjdir"`
	Backends   []string      `json:"backends"`
	Objects    int           `json:"objects"`
	Summaries  []jsonSummary `json:"summaries"`
	Wall       float64       `json:"wall_seconds"`
	CPU        float64       `json:"cpu_seconds"`
	Efficiency float64       `json:"efficiency"`
	Untracked  float64       `json:"untracked_seconds"`
	Diffs      []jsonDiff    `json:"diffs,omitempty"`
	Advisories []string      `json:"advisories,omitempty"`
}

func (r *Renderer) renderJSON(res *pipeline.Result, dryRun bool) error {
	report := jsonReport{
		DryRun:     dryRun,
		TopSrcDir:  res.Config.TopSrcDir,
		TopObjDir:  res.Config.TopObjDir,
		Backends:   res.Backends,
		Objects:    res.Objects,
		Wall:       res.Totals.Wall.Seconds(),
		CPU:        res.Totals.CPU.Seconds(),
		Efficiency: res.Totals.Efficiency(),
		Untracked:  res.Totals.Untracked().Seconds(),
	}
	for _, s := range res.Summaries {
		report.Summaries = append(report.Summaries, jsonSummary{Name: s.Name, Seconds: s.Elapsed.Seconds(), Text: s.String()})
	}
	for _, d := range res.Diffs {
		report.Diffs = append(report.Diffs, jsonDiff{Path: d.Path, Added: d.Added, Deleted: d.Deleted, Diff: d.Text})
	}
	for _, a := range res.Advisories {
		report.Advisories = append(report.Advisories, a.Name)
	}
	return r.encode(report)
}

func (r *Renderer) encode(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode report")
	}
	return nil
}

package style

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
	"github.com/arthur-debert/imgrename/pkg/task"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Renderer formats command output
type Renderer interface {
	RenderSummary(res *task.Result) string
	RenderPreview(res *task.Result) string
	RenderFields(template []fields.DataField) string
	RenderError(err error) string
}

// NewRenderer returns a TerminalRenderer when w is a terminal and a
// PlainRenderer otherwise
func NewRenderer(w io.Writer) Renderer {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// counts tallies row outcomes
type counts struct {
	renamed, planned, failed, pending int
}

func tally(res *task.Result) counts {
	var c counts
	for _, r := range res.Rows {
		switch r.Status {
		case task.StatusRenamed:
			c.renamed++
		case task.StatusPlanned:
			c.planned++
		case task.StatusPending:
			c.pending++
		default:
			c.failed++
		}
	}
	return c
}

func footer(res *task.Result) string {
	c := tally(res)
	if res.DryRun {
		return fmt.Sprintf("%d ready, %d with errors", c.planned, c.failed)
	}
	parts := []string{
		fmt.Sprintf("%d renamed", c.renamed),
		fmt.Sprintf("%d failed", c.failed),
	}
	if c.pending > 0 {
		parts = append(parts, fmt.Sprintf("%d not attempted", c.pending))
	}
	parts = append(parts, humanize.Bytes(uint64(res.Bytes))+" copied")
	return strings.Join(parts, ", ")
}

// rowError is the short message shown next to a failed row
func rowError(err error) string {
	if err == nil {
		return ""
	}
	var re *errors.RenameError
	if stderrors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

func sortedDetails(err error) []string {
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s: %v", k, details[k])
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// TerminalRenderer renders with colours and tables
type TerminalRenderer struct{}

// NewTerminalRenderer creates a TerminalRenderer
func NewTerminalRenderer() *TerminalRenderer { return &TerminalRenderer{} }

// RenderSummary lists every row with its outcome. A batch-level failure is
// left to the caller, which reports it as the command error.
func (r *TerminalRenderer) RenderSummary(res *task.Result) string {
	var b strings.Builder
	for _, row := range res.Rows {
		switch row.Status {
		case task.StatusRenamed, task.StatusPlanned:
			fmt.Fprintf(&b, "%s %s → %s\n", SuccessIndicator,
				PathStyle.Render(row.Source), PathStyle.Render(row.Destination))
		case task.StatusPending:
			fmt.Fprintf(&b, "%s %s %s\n", PendingIndicator, row.Source, MutedStyle.Render("not attempted"))
		default:
			fmt.Fprintf(&b, "%s %s %s\n", ErrorIndicator, row.Source, ErrorStyle.Render(rowError(row.Err)))
			for _, cerr := range row.CleanupErrs {
				fmt.Fprintf(&b, "%s\n", Indent(WarningStyle.Render("cleanup: "+rowError(cerr)), 1))
			}
		}
	}
	if res.Cancelled {
		b.WriteString(WarningStyle.Render("Rename cancelled") + "\n")
	}
	for _, err := range res.EndErrs {
		b.WriteString(WarningIndicator + " " + rowError(err) + "\n")
	}
	b.WriteString("\n" + TitleStyle.Render(footer(res)))
	return b.String()
}

// RenderPreview shows the planned destination of every row as a table
func (r *TerminalRenderer) RenderPreview(res *task.Result) string {
	data := pterm.TableData{{"#", "Source", "Destination", "Problem"}}
	for _, row := range res.Rows {
		dest := row.Destination
		if dest != "" {
			dest = filepath.Base(dest)
		}
		data = append(data, []string{
			fmt.Sprint(row.Index + 1),
			filepath.Base(row.Source),
			dest,
			rowError(row.Err),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return NewPlainRenderer().RenderPreview(res)
	}
	return fmt.Sprintf("%s %s\n\n%s\n\n%s", TitleStyle.Render("Output directory:"), PathStyle.Render(res.Dir), table, TitleStyle.Render(footer(res)))
}

// RenderFields lists the configured fields
func (r *TerminalRenderer) RenderFields(template []fields.DataField) string {
	data := pterm.TableData{{"Field", "Kind", "Required", "Editable", "Plug-ins see it"}}
	for _, f := range template {
		data = append(data, []string{
			f.DisplayName(),
			string(f.Kind()),
			yesNo(f.IsRequired()),
			yesNo(f.IsEditable()),
			yesNo(f.IsMarkedForTask()),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return NewPlainRenderer().RenderFields(template)
	}
	return table
}

// RenderError shows the error code, message and details
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", ErrorStyle.Render(fmt.Sprintf("Error [%s]:", errors.GetErrorCode(err))), err.Error())
	for _, d := range sortedDetails(err) {
		b.WriteString("\n" + Indent(MutedStyle.Render(d), 1))
	}
	return b.String()
}

// PlainRenderer renders plain text for pipes and logs
type PlainRenderer struct{}

// NewPlainRenderer creates a PlainRenderer
func NewPlainRenderer() *PlainRenderer { return &PlainRenderer{} }

// RenderSummary prints the engine's summary lines and the totals
func (r *PlainRenderer) RenderSummary(res *task.Result) string {
	var b strings.Builder
	for _, line := range res.Summary {
		b.WriteString(line + "\n")
	}
	if res.Cancelled {
		b.WriteString("Rename cancelled\n")
	}
	for _, err := range res.EndErrs {
		b.WriteString("WARNING: " + rowError(err) + "\n")
	}
	b.WriteString(footer(res))
	return b.String()
}

// RenderPreview prints one tab-separated line per row
func (r *PlainRenderer) RenderPreview(res *task.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Output directory: %s\n", res.Dir)
	for _, row := range res.Rows {
		if row.Err != nil {
			fmt.Fprintf(&b, "%s\t-\t%s\n", row.Source, rowError(row.Err))
			continue
		}
		fmt.Fprintf(&b, "%s\t%s\n", row.Source, row.Destination)
	}
	b.WriteString(footer(res))
	return b.String()
}

// RenderFields prints one line per field
func (r *PlainRenderer) RenderFields(template []fields.DataField) string {
	var b strings.Builder
	for _, f := range template {
		var flags []string
		if f.IsRequired() {
			flags = append(flags, "required")
		}
		if f.IsEditable() {
			flags = append(flags, "editable")
		}
		if f.IsMarkedForTask() {
			flags = append(flags, "task")
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f.DisplayName(), f.Kind(), strings.Join(flags, ","))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderError prints the error and its details
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	lines := append([]string{"Error: " + err.Error()}, sortedDetails(err)...)
	return strings.Join(lines, "\n  ")
}

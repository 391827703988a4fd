// Package printer renders the run timeline on the terminal.
package printer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/slok/replup/internal/model"
)

// Printer knows how to print the run timeline.
type Printer interface {
	// Start begins a step, only one step is active at a time.
	Start(msg string)
	// Succeed ends the active step successfully.
	Succeed()
	// Fail ends the active step with a failure.
	Fail()
	Warn(msg string)
	Info(msg string)
	// Status reports progress of the active step without replacing its label.
	Status(msg string)
	// Output prints program output as is.
	Output(text string)
	PrintReport(r model.Report) error
}

// TerminalConfig is the configuration of the terminal printer.
type TerminalConfig struct {
	Out     io.Writer
	NoColor bool
}

// TerminalPrinter prints step lines like `✔ Uploading files`. It doesn't animate,
// every state change is a new line so it's safe to interleave with program output.
type TerminalPrinter struct {
	out    io.Writer
	styles styles

	mu      sync.Mutex
	current string
}

type styles struct {
	pending lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	link    lipgloss.Style
}

// NewTerminalPrinter creates a new terminal printer.
func NewTerminalPrinter(cfg TerminalConfig) *TerminalPrinter {
	return &TerminalPrinter{
		out:    cfg.Out,
		styles: newStyles(cfg.Out, cfg.NoColor),
	}
}

func newStyles(out io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(out)
	if noColor {
		s := r.NewStyle()
		return styles{pending: s, success: s, failure: s, warning: s, info: s, link: s}
	}

	return styles{
		pending: r.NewStyle().Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		info:    r.NewStyle().Foreground(lipgloss.Color("4")),
		link:    r.NewStyle().Foreground(lipgloss.Color("2")).Underline(true),
	}
}

func (t *TerminalPrinter) line(style lipgloss.Style, symbol, msg string) {
	fmt.Fprintf(t.out, "%s %s\n", style.Render(symbol), msg)
}

func (t *TerminalPrinter) Start(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = msg
	t.line(t.styles.pending, "-", msg)
}

func (t *TerminalPrinter) Succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == "" {
		return
	}
	t.line(t.styles.success, "✔", t.current)
	t.current = ""
}

func (t *TerminalPrinter) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == "" {
		return
	}
	t.line(t.styles.failure, "✖", t.current)
	t.current = ""
}

func (t *TerminalPrinter) Warn(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.styles.warning, "⚠", msg)
}

func (t *TerminalPrinter) Info(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.line(t.styles.info, "ℹ", msg)
}

// Status prints a sub line of the active step, the step label is kept.
func (t *TerminalPrinter) Status(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "  %s %s\n", t.styles.pending.Render("›"), msg)
}

func (t *TerminalPrinter) Output(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(t.out, text)
}

// PrintReport prints the final URLs of the run.
func (t *TerminalPrinter) PrintReport(r model.Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "%s %s\n", t.styles.success.Render("Created REPL:"), t.styles.link.Render(r.Workspace.URL.String()))
	if u := r.WebURL(); u != "" {
		fmt.Fprintf(t.out, "%s %s\n", t.styles.success.Render("Web:"), t.styles.link.Render(u))
	}
	return nil
}

// UploadSummary returns the user message of an upload.
func UploadSummary(files int, bytes int64) string {
	noun := "files"
	if files == 1 {
		noun = "file"
	}
	return fmt.Sprintf("Uploaded %d %s (%s)", files, noun, humanize.Bytes(uint64(bytes)))
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/casework/CASE-Utility-Verifier/config"
	"github.com/casework/CASE-Utility-Verifier/nlggen"
)

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	added lipgloss.Style
	gone  lipgloss.Style
}

// newStyles returns coloured styles when w is a terminal and plain ones
// otherwise.
func newStyles(w io.Writer) styles {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		plain := lipgloss.NewStyle()
		return styles{title: plain, label: plain, ok: plain, warn: plain, added: plain, gone: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		added: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		gone:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func printSummary(w io.Writer, cfg *config.Config, res *nlggen.Result) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render("Generated "+cfg.Output.Python))
	if cfg.Output.Go != "" {
		fmt.Fprintln(w, st.title.Render("Generated "+cfg.Output.Go))
	}
	row := func(label string, n int, style lipgloss.Style) {
		fmt.Fprintf(w, "  %s %s\n", st.label.Render(fmt.Sprintf("%-12s", label)), style.Render(fmt.Sprint(n)))
	}
	row("functions", len(res.Plan.Functions()), st.ok)
	row("assertions", len(res.Plan.Manifest), st.ok)
	diagStyle := st.ok
	if res.Diagnostics.Len() > 0 {
		diagStyle = st.warn
	}
	row("diagnostics", res.Diagnostics.Len(), diagStyle)
}

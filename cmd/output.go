package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/deploymenttheory/go-flowforge/internal/config"
	"github.com/deploymenttheory/go-flowforge/internal/logger"
	"github.com/deploymenttheory/go-flowforge/pkg/tooling"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	indexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// printWorkflows writes a numbered list of workflow names
func printWorkflows(out io.Writer, names []string) {
	fmt.Fprintln(out, headerStyle.Render("Available workflows:"))
	if len(names) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  (none loaded)"))
		return
	}
	for i, name := range names {
		fmt.Fprintf(out, "%s %s\n", indexStyle.Render(fmt.Sprintf("%d.", i+1)), name)
	}
}

// printActionTypes writes the builtin and manifest action types followed by
// the directories searched for plugin files.
func printActionTypes(out io.Writer) error {
	resolver, err := tooling.NewResolver(&config.Instance, logger.Logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, headerStyle.Render("Action types:"))
	for _, t := range resolver.Types() {
		fmt.Fprintf(out, "  %s\n", t)
	}
	fmt.Fprintln(out, headerStyle.Render("Plugin search roots:"))
	for _, root := range resolver.SearchRoots() {
		fmt.Fprintf(out, "  %s\n", mutedStyle.Render(root))
	}
	return nil
}

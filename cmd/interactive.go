package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-flowforge/internal/logger"
)

// workflowEngine is the part of the engine the menu drives
type workflowEngine interface {
	Names() []string
	ActionSummaries(name string) []string
	RunByName(name string) error
	RunByNameWithOverrides(name string, overrides []string) error
	RunAll()
}

// interactiveCmd starts the numbered menu
var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Start the interactive workflow menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command) error {
	eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	m := newMenu(eng, cmd.InOrStdin(), cmd.OutOrStdout())
	m.loop()
	logger.LogInfo("Engine exited", nil)
	return nil
}

type menu struct {
	eng workflowEngine
	in  *bufio.Reader
	out io.Writer
}

func newMenu(eng workflowEngine, in io.Reader, out io.Writer) *menu {
	return &menu{eng: eng, in: bufio.NewReader(in), out: out}
}

// readLine returns the next trimmed input line. ok is false once input is
// exhausted.
func (m *menu) readLine(prompt string) (string, bool) {
	line, ok := m.readRaw(prompt)
	return strings.TrimSpace(line), ok
}

// readRaw returns the next input line without its line ending
func (m *menu) readRaw(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// loop shows the menu until the operator exits or input ends
func (m *menu) loop() {
	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, headerStyle.Render("Options:"))
		fmt.Fprintln(m.out, "1. List available workflows")
		fmt.Fprintln(m.out, "2. Run workflow(s)")
		fmt.Fprintln(m.out, "3. Run a workflow with parameter overrides")
		fmt.Fprintln(m.out, "4. Run all workflows")
		fmt.Fprintln(m.out, "5. Exit")

		input, ok := m.readLine("Enter choice: ")
		if !ok {
			return
		}
		choice, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintln(m.out, errorStyle.Render("Invalid input. Please enter a number between 1 and 5."))
			continue
		}

		switch choice {
		case 1:
			printWorkflows(m.out, m.eng.Names())
		case 2:
			m.runSelected()
		case 3:
			m.runWithOverrides()
		case 4:
			m.eng.RunAll()
			fmt.Fprintln(m.out, okStyle.Render("All workflows finished."))
		case 5:
			return
		default:
			fmt.Fprintln(m.out, errorStyle.Render("Invalid choice. Please enter one of the listed options."))
		}
	}
}

// runSelected runs each chosen workflow in the order entered, one at a time
func (m *menu) runSelected() {
	names := m.eng.Names()
	printWorkflows(m.out, names)

	input, ok := m.readLine("Enter workflow number(s) (comma-separated for multiple): ")
	if !ok {
		return
	}
	selected := parseSelection(input, len(names))
	if len(selected) == 0 {
		fmt.Fprintln(m.out, errorStyle.Render("No valid workflow selected."))
		return
	}
	for _, idx := range selected {
		fmt.Fprintf(m.out, "Running workflow: %s\n", names[idx])
		if err := m.eng.RunByName(names[idx]); err != nil {
			fmt.Fprintln(m.out, errorStyle.Render(err.Error()))
		}
	}
}

// runWithOverrides prompts for one replacement parameter string per step
func (m *menu) runWithOverrides() {
	names := m.eng.Names()
	printWorkflows(m.out, names)

	input, ok := m.readLine("Enter workflow number: ")
	if !ok {
		return
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(names) {
		fmt.Fprintln(m.out, errorStyle.Render("Invalid workflow number."))
		return
	}
	name := names[n-1]

	summaries := m.eng.ActionSummaries(name)
	fmt.Fprintf(m.out, "\nWorkflow '%s' has %d actions.\n", name, len(summaries))
	for i, s := range summaries {
		fmt.Fprintf(m.out, "%s %s\n", indexStyle.Render(fmt.Sprintf("%d.", i+1)), s)
	}

	overrides := make([]string, 0, len(summaries))
	for i := range summaries {
		value, ok := m.readRaw(fmt.Sprintf("Enter override for action %d (leave blank to use default): ", i+1))
		if !ok {
			break
		}
		if strings.TrimSpace(value) == "" {
			value = ""
		}
		overrides = append(overrides, value)
	}

	fmt.Fprintf(m.out, "Running workflow: %s with overrides\n", name)
	if err := m.eng.RunByNameWithOverrides(name, overrides); err != nil {
		fmt.Fprintln(m.out, errorStyle.Render(err.Error()))
	}
}

// parseSelection turns "1, 3,x,9" into zero-based indexes, dropping entries
// that are not numbers or fall outside 1..max. Order and repeats are kept.
func parseSelection(input string, max int) []int {
	var result []int
	for _, item := range strings.Split(input, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil || n < 1 || n > max {
			continue
		}
		result = append(result, n-1)
	}
	return result
}

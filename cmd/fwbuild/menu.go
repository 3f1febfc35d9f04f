package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/systemstart/fwbuild/pkg/steps"
	"github.com/systemstart/fwbuild/pkg/workflow"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")).
			Border(lipgloss.NormalBorder()).
			Padding(0, 2)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func runMenu(engine *workflow.Engine) {
	titles := stepTitles()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println()
		fmt.Println(renderMenu(titles))
		fmt.Print("Select an option (F/0-9): ")

		if !scanner.Scan() {
			return
		}
		choice := strings.TrimSpace(strings.ToLower(scanner.Text()))

		switch {
		case choice == "f":
			_ = engine.RunFull()
			printSummary(engine.Summary())
		case choice == "0":
			return
		default:
			idx, err := strconv.Atoi(choice)
			if err != nil || idx < 1 || idx > len(steps.Names()) {
				slog.Warn("invalid selection; please try again", "input", choice)
				continue
			}
			_ = engine.RunStep(steps.Names()[idx-1])
		}
	}
}

func stepTitles() []string {
	titles := make([]string, 0, len(steps.Names()))
	for _, name := range steps.Names() {
		step, err := steps.New(name)
		if err != nil {
			titles = append(titles, name)
			continue
		}
		titles = append(titles, step.Title())
	}
	return titles
}

func renderMenu(titles []string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Embedded Build Workflow Manager"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  F - Run full workflow\n")
	for i, title := range titles {
		fmt.Fprintf(&b, "  %d - %s\n", i+1, title)
	}
	fmt.Fprintf(&b, "  0 - Exit")
	return b.String()
}

func printSummary(records []workflow.Record) {
	fmt.Println()
	fmt.Println("Build workflow summary")
	fmt.Println(dimStyle.Render(strings.Repeat("-", 44)))
	for _, record := range records {
		status := okStyle.Render(record.Status)
		if strings.HasPrefix(record.Status, "FAILED") {
			status = failedStyle.Render(record.Status)
		}
		fmt.Printf("%-30s %s\n", record.Step, status)
	}
	fmt.Println(dimStyle.Render(strings.Repeat("-", 44)))
}

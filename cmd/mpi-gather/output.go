package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))
)

// styled reports whether out is a terminal.
func styled(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func render(out io.Writer, res outcome, color bool) {
	title, label, value := "=== mpi-gather ===", "size:", fmt.Sprint(res.size)
	if color {
		title = titleStyle.Render("mpi-gather")
		label = labelStyle.Render(label)
		value = valueStyle.Render(value)
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, label, value)

	for i, v := range res.values {
		label := fmt.Sprintf("out[%d] =", i)
		value := fmt.Sprint(v)
		if color {
			label = labelStyle.Render(label)
			value = valueStyle.Render(value)
		}
		fmt.Fprintln(out, label, value)
	}
}

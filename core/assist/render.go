package assist

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// wrapWidth is the column explanations are wrapped at.
const wrapWidth = 80

// Renderer pretty-prints assistant responses to a terminal.
type Renderer struct {
	w io.Writer

	command  *color.Color
	header   *color.Color
	body     *color.Color
	fixTitle *color.Color
	fixBody  *color.Color
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w:        w,
		command:  color.New(color.FgRed, color.Bold),
		header:   color.New(color.FgGreen, color.Bold),
		body:     color.New(color.FgYellow),
		fixTitle: color.New(color.FgMagenta, color.Bold),
		fixBody:  color.New(color.FgHiYellow),
	}
}

// Command prints a generated shell command.
func (r *Renderer) Command(cmd string) {
	r.command.Fprintln(r.w, cmd)
}

// Explanation prints the brief explanation of a command.
func (r *Renderer) Explanation(text string) {
	r.header.Fprintln(r.w, "Explanation:")
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		r.body.Fprintln(r.w, strings.TrimSpace(line))
	}
}

// DetailedExplanation prints the long-form explanation, recognising
// **section** headers and bullet lists, wrapped at 80 columns.
func (r *Renderer) DetailedExplanation(detailed string) {
	r.header.Fprintln(r.w, "Detailed Explanation:")

	inSection := false
	for _, line := range strings.Split(detailed, "\n") {
		clean := strings.TrimSpace(line)
		if clean == "" {
			if inSection {
				fmt.Fprintln(r.w)
				inSection = false
			}
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		if strings.HasPrefix(clean, "**") && strings.HasSuffix(clean, "**") {
			section := strings.TrimSpace(strings.Trim(clean, "*"))
			fmt.Fprintln(r.w)
			r.header.Fprintln(r.w, section)
			inSection = true
			continue
		}

		if bullet, ok := trimBullet(clean); ok {
			marker := "•"
			if indent >= 4 {
				marker = "◦"
			}
			padding := strings.Repeat("  ", indent/2+1)
			for i, wrapped := range wrap(bullet, wrapWidth-len(padding)-2) {
				if i == 0 {
					r.body.Fprintf(r.w, "%s%s %s\n", padding, marker, wrapped)
				} else {
					r.body.Fprintf(r.w, "%s  %s\n", padding, wrapped)
				}
			}
			continue
		}

		for _, wrapped := range wrap(clean, wrapWidth) {
			r.body.Fprintln(r.w, wrapped)
		}
	}
}

// Fix prints a "How to fix" block from an ExplainError answer: the first
// line is the problem, the rest are the steps.
func (r *Renderer) Fix(explanation string) {
	parts := strings.SplitN(strings.TrimSpace(explanation), "\n", 2)
	if len(parts) < 2 {
		r.fixBody.Fprintln(r.w, parts[0])
		return
	}

	fmt.Fprintln(r.w)
	r.fixTitle.Fprintln(r.w, "How to fix:")
	solution := strings.ReplaceAll(parts[1], "- ", "• ")
	for _, line := range strings.Split(strings.TrimSpace(solution), "\n") {
		r.fixBody.Fprintln(r.w, strings.TrimSpace(line))
	}
}

func trimBullet(line string) (string, bool) {
	for _, prefix := range []string{"* ", "- ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

// wrap splits text into lines no wider than width, breaking on spaces.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= width:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if lines == nil {
		lines = []string{""}
	}
	return lines
}

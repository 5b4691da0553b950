package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/gate"
	"github.com/tailored-agentic-units/ucf/lane"
)

var (
	laneStyles = map[protocol.Lane]lipgloss.Style{
		protocol.LaneStrategic:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		protocol.LaneImplementation: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	}
	riskColors = map[protocol.Risk]lipgloss.Color{
		protocol.RiskLow:    lipgloss.Color("42"),
		protocol.RiskMedium: lipgloss.Color("214"),
		protocol.RiskHigh:   lipgloss.Color("196"),
	}
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// renderer formats output for the terminal. Styling is off when out is not
// a terminal.
type renderer struct {
	styled bool
	md     *glamour.TermRenderer
}

func newRenderer(out io.Writer) *renderer {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return &renderer{}
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		md = nil
	}
	return &renderer{styled: true, md: md}
}

func (r *renderer) reply(msg protocol.Message) string {
	header := fmt.Sprintf("[%s]", msg.Lane)
	body := msg.Content
	if !r.styled {
		return header + "\n" + body
	}

	if style, ok := laneStyles[msg.Lane]; ok {
		header = style.Render(header)
	}
	if r.md != nil {
		if rendered, err := r.md.Render(body); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	return header + "\n" + body
}

func (r *renderer) approval(req protocol.ApprovalRequest) string {
	if !r.styled {
		return gate.FormatRequest(req)
	}

	color, ok := riskColors[req.Risk]
	if !ok {
		color = riskColors[protocol.RiskHigh]
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render("SECURITY APPROVAL REQUIRED")
	body := fmt.Sprintf("%s\n\nIntent:  %s\nCommand: %s\nRisk:    %s",
		title, req.Intent, req.Command, strings.ToUpper(string(req.Risk)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(body)
}

func (r *renderer) analysis(a lane.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lane: %s", a.Lane)
	if a.Tagged {
		b.WriteString(" (explicit tag)")
	}
	b.WriteByte('\n')
	for _, l := range protocol.ValidLanes() {
		fmt.Fprintf(&b, "  %s score: %d\n", l, a.Scores[l])
	}
	for _, m := range a.Matches {
		fmt.Fprintf(&b, "  %-14s %s\n", m.Lane, r.dim(m.Pattern))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *renderer) dim(s string) string {
	if !r.styled {
		return s
	}
	return dimStyle.Render(s)
}

func (r *renderer) err(e error) string {
	msg := "Error: " + e.Error()
	if !r.styled {
		return msg
	}
	return errorStyle.Render(msg)
}

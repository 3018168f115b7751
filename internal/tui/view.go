package tui

import (
	"fmt"
	"strings"

	"github.com/alvinbaena/pwd-register/internal/feedback"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

func (m Model) View() string {
	s := m.pipeline.State()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Create your account"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render(labelStyle.Render("Username") + m.username.View()))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(labelStyle.Render("Password") + m.password.View()))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render(RenderAnalysis(s.View)))
	b.WriteString("\n\n")

	btn := disabledBtn
	if s.SubmitEnabled {
		btn = buttonStyle
	}
	b.WriteString(sectionStyle.Render(btn.Render(s.SubmitLabel)))
	b.WriteString("\n")

	if n := s.Notification; n.Visible {
		toast := toastErr
		if n.Kind == feedback.KindSuccess {
			toast = toastOK
		}
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(toast.Render(n.Message)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(mutedStyle.Render(helpLine(s.Masked))))
	b.WriteString("\n")

	return b.String()
}

// RenderAnalysis draws the strength panels. It degrades to plain text when
// the output is not a terminal.
func RenderAnalysis(v feedback.View) string {
	if !v.Visible {
		return mutedStyle.Render("Start typing a password to see its strength analysis")
	}

	color := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color))
	filled := v.Width * barWidth / 100

	var b strings.Builder
	b.WriteString(color.Render(strings.Repeat("█", filled)))
	b.WriteString(mutedStyle.Render(strings.Repeat("░", barWidth-filled)))
	b.WriteString(" " + v.ScoreText + "\n")
	b.WriteString(fmt.Sprintf("%s %s\n", v.Icon, color.Bold(true).Render(v.Label)))
	if v.CrackTime != "" {
		b.WriteString(mutedStyle.Render("Time to crack: "+v.CrackTime) + "\n")
	}

	b.WriteString("\n")
	for _, row := range v.Checks {
		if row.Passed {
			b.WriteString(passStyle.Render("✓ " + row.Label))
		} else {
			b.WriteString(failStyle.Render("✗ " + row.Label))
		}
		b.WriteString("\n")
	}

	if len(v.Suggestions) > 0 {
		b.WriteString("\nSuggestions\n")
		for _, sg := range v.Suggestions {
			if sg.Affirmative {
				b.WriteString(passStyle.Render("✓ " + sg.Text))
			} else {
				b.WriteString("› " + sg.Text)
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func helpLine(masked bool) string {
	reveal := "show"
	if !masked {
		reveal = "hide"
	}
	return fmt.Sprintf("%s • %s • ctrl+r %s password • %s",
		keys.Next.Help().Key+" "+keys.Next.Help().Desc,
		keys.Submit.Help().Key+" "+keys.Submit.Help().Desc,
		reveal,
		keys.Quit.Help().Key+" "+keys.Quit.Help().Desc,
	)
}

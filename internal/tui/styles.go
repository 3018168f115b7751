package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginLeft(2)
	labelStyle   = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("245"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#34c759"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff2d55"))
	buttonStyle  = lipgloss.NewStyle().Padding(0, 2).Bold(true).Background(lipgloss.Color("#007aff")).Foreground(lipgloss.Color("#ffffff"))
	disabledBtn  = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("238")).Foreground(lipgloss.Color("245"))
	toastOK      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#34c759"))
	toastErr     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#ff2d55"))
	sectionStyle = lipgloss.NewStyle().MarginLeft(2)
)

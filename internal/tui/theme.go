package tui

import "github.com/charmbracelet/lipgloss"

// Terminal palette. Gains and bullish reads share green, losses and bearish
// reads share red.
const (
	colorGain    = lipgloss.Color("#26A69A")
	colorLoss    = lipgloss.Color("#EF5350")
	colorFlat    = lipgloss.Color("#9E9E9E")
	colorAccent  = lipgloss.Color("#5C6BC0")
	colorCaution = lipgloss.Color("#FFCA28")
	colorText    = lipgloss.Color("#ECEFF1")
	colorFrame   = lipgloss.Color("#455A64")
)

var (
	ActiveTabStyle   = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(colorText).Background(colorAccent)
	InactiveTabStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(colorFlat)

	PriceUpStyle   = lipgloss.NewStyle().Foreground(colorGain)
	PriceDownStyle = lipgloss.NewStyle().Foreground(colorLoss)
	PriceZeroStyle = lipgloss.NewStyle().Foreground(colorFlat)

	BullishStyle = PriceUpStyle.Bold(true)
	BearishStyle = PriceDownStyle.Bold(true)
	NeutralStyle = lipgloss.NewStyle().Foreground(colorCaution)

	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	SubtextStyle = lipgloss.NewStyle().Foreground(colorFlat)
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFrame)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorLoss)
	SpinnerColor = colorAccent

	QueryStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	ResultStyle = lipgloss.NewStyle().Foreground(colorText)

	HeatGreen   = colorGain
	HeatRed     = colorLoss
	HeatNeutral = colorFrame

	// Allocation weight bands, heaviest first.
	WeightHighStyle = lipgloss.NewStyle().Foreground(colorCaution)
	WeightMidStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	WeightLowStyle  = PriceUpStyle
)

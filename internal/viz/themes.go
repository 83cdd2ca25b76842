package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name    string
	Scene   lipgloss.Color
	Header  lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Graph   lipgloss.Color
	Warning lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "phosphor",
		Scene:   lipgloss.Color("#00ff66"),
		Header:  lipgloss.Color("86"),
		Label:   lipgloss.Color("245"),
		Value:   lipgloss.Color("252"),
		Graph:   lipgloss.Color("49"),
		Warning: lipgloss.Color("#ffaa00"),
	},
	{
		Name:    "ocean",
		Scene:   lipgloss.Color("#00a8cc"),
		Header:  lipgloss.Color("#0077be"),
		Label:   lipgloss.Color("#4488aa"),
		Value:   lipgloss.Color("#e0f0ff"),
		Graph:   lipgloss.Color("#ffd700"),
		Warning: lipgloss.Color("#ff4444"),
	},
	{
		Name:    "minimal",
		Scene:   lipgloss.Color("#ffffff"),
		Header:  lipgloss.Color("#ffffff"),
		Label:   lipgloss.Color("#888888"),
		Value:   lipgloss.Color("#cccccc"),
		Graph:   lipgloss.Color("#0088ff"),
		Warning: lipgloss.Color("#ffaa00"),
	},
}

// GetTheme falls back to the first theme for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func nextTheme(current string) Theme {
	for i, t := range Themes {
		if t.Name == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

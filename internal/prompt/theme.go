/*
MIT License

Copyright (c) 2025 Yuval Adar <adary@adary.org>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package prompt

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adaryorg/securedesk/internal/config"
)

type styles struct {
	Border lipgloss.Style
	Title  lipgloss.Style
	Text   lipgloss.Style
	Help   lipgloss.Style
}

func newStyles(theme config.ThemeConfig) styles {
	return styles{
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(parseColor(theme.Border.Foreground)).
			Padding(0, 1),
		Title: colorConfigToStyle(theme.Title),
		Text:  colorConfigToStyle(theme.Text),
		Help:  colorConfigToStyle(theme.Help),
	}
}

// parseColor converts CSS color names to hex. Hex codes and ANSI numbers pass through.
func parseColor(colorStr string) lipgloss.Color {
	if colorStr == "" {
		return lipgloss.Color("")
	}

	if strings.HasPrefix(colorStr, "#") {
		return lipgloss.Color(colorStr)
	}

	cssColors := map[string]string{
		"black":   "#000000",
		"white":   "#FFFFFF",
		"red":     "#FF0000",
		"green":   "#008000",
		"blue":    "#0000FF",
		"yellow":  "#FFFF00",
		"cyan":    "#00FFFF",
		"magenta": "#FF00FF",
		"gray":    "#808080",
		"grey":    "#808080",
		"orange":  "#FFA500",
		"purple":  "#800080",
		"gold":    "#FFD700",
		"silver":  "#C0C0C0",
		"navy":    "#000080",
	}

	if hexColor, exists := cssColors[strings.ToLower(colorStr)]; exists {
		return lipgloss.Color(hexColor)
	}

	return lipgloss.Color(colorStr)
}

func colorConfigToStyle(cc config.ColorConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if cc.Foreground != "" {
		style = style.Foreground(parseColor(cc.Foreground))
	}
	if cc.Background != "" {
		style = style.Background(parseColor(cc.Background))
	}
	if cc.Bold {
		style = style.Bold(true)
	}

	return style
}

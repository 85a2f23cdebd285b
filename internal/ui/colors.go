package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorBrand = "#1DB954"
	colorOK    = "#04B575"
	colorError = "#FF5F87"
	colorWarn  = "#FFA500"
	colorMuted = "#626262"
)

var styles = NewPalette(colorBrand, colorOK, colorError, colorWarn, colorMuted)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	brand lipgloss.Color
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		brand: lipgloss.Color(t),
	}
}

// delegate returns the list delegate with the selection drawn in the brand color.
func (p *Palette) delegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(p.brand).BorderForeground(p.brand)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(p.brand).BorderForeground(p.brand)
	return d
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rect is a screen area in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// centeredRect is where overlayCenter places fg on a w×h screen.
func centeredRect(fg string, w, h int) rect {
	fgW := 0
	lines := strings.Split(fg, "\n")
	for _, ln := range lines {
		if n := xansi.StringWidth(ln); n > fgW {
			fgW = n
		}
	}
	fgH := len(lines)
	if fgW > w {
		fgW = w
	}
	if fgH > h {
		fgH = h
	}

	return rect{
		x: max((w-fgW)/2, 0),
		y: max((h-fgH)/2, 0),
		w: fgW,
		h: fgH,
	}
}

func overlayCenter(bg, fg string, w, h int) string {
	bgLines := splitLinesN(bg, h)
	fgLines := strings.Split(fg, "\n")

	r := centeredRect(fg, w, h)
	if r.w <= 0 || r.h <= 0 {
		return strings.Join(bgLines, "\n")
	}
	if len(fgLines) > r.h {
		fgLines = fgLines[:r.h]
	}

	shadowLine := lipgloss.NewStyle().Background(lipgloss.Color("236")).Render(strings.Repeat(" ", r.w))
	shadow := make([]string, r.h)
	for i := range shadow {
		shadow[i] = shadowLine
	}
	overlayAt(bgLines, shadow, w, r.x+1, r.y+1, r.w)
	overlayAt(bgLines, fgLines, w, r.x, r.y, r.w)
	return strings.Join(bgLines, "\n")
}

func overlayAt(bgLines, fgLines []string, w, x, y, fgW int) {
	if fgW <= 0 {
		return
	}
	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		left := xansi.Cut(bgLine, 0, x)
		if n := xansi.StringWidth(left); n < x {
			left += strings.Repeat(" ", x-n)
		}
		right := xansi.Cut(bgLine, x+fgW, w)

		fgLine := fgLines[i]
		if n := xansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = xansi.Cut(fgLine, 0, fgW)
		}

		bgLines[y+i] = left + fgLine + right
	}
}

func dimBackground(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true).Render(xansi.Strip(s))
}

func renderModalBox(screenWidth int, title, body string) string {
	w := modalWidth(screenWidth)

	header := titleStyle.Render(title)
	content := header + "\n\n" + body

	return lipgloss.NewStyle().
		Width(w).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Background(colorPanel).
		Render(content)
}

// modalWidth is the content width of the modal box, padding included.
func modalWidth(screenWidth int) int {
	w := screenWidth - 12
	if w < 30 {
		w = 30
	}
	if w > 72 {
		w = 72
	}
	return w
}

func splitLinesN(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) >= n {
		return lines[:n]
	}
	out := make([]string, 0, n)
	out = append(out, lines...)
	for len(out) < n {
		out = append(out, "")
	}
	return out
}

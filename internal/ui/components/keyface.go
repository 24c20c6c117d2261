package components

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// KeyFace renders a frame as terminal cells. Each cell shows two sampled
// pixels: the upper one as foreground of ▀ and the lower one as background.
func KeyFace(img image.Image, columns int) string {
	if img == nil || columns <= 0 {
		return ""
	}
	b := img.Bounds()
	step := float64(b.Dx()) / float64(columns)
	rows := int(float64(b.Dy()) / (2 * step))

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			x := b.Min.X + int((float64(col)+0.5)*step)
			top := b.Min.Y + int((float64(2*row)+0.5)*step)
			bottom := b.Min.Y + int((float64(2*row+1)+0.5)*step)
			style := lipgloss.NewStyle().
				Foreground(hexColor(img.At(x, top))).
				Background(hexColor(img.At(x, bottom)))
			sb.WriteString(style.Render(halfBlock))
		}
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	const digits = "0123456789abcdef"
	out := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint32{r >> 8, g >> 8, b >> 8} {
		out[1+2*i] = digits[v>>4]
		out[2+2*i] = digits[v&0x0f]
	}
	return lipgloss.Color(string(out))
}

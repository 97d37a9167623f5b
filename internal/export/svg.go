package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/storage"
	"github.com/san-kum/handcloud/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	// SVG header
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, fill))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	// Convert each braille character to dots
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CloudSVG projects the particle buffers through cam and draws one
// additive circle per visible particle, far particles first.
func CloudSVG(buf particles.Buffers, model mgl32.Mat4, cam *viz.Camera, width, height int) string {
	proj := cam.Frame(model, width, height)

	type dot struct {
		x, y, r, depth float32
		fill            string
	}
	dots := make([]dot, 0, buf.Len())
	for i := 0; i < buf.Len(); i++ {
		j := 3 * i
		p := mgl32.Vec3{buf.Positions[j], buf.Positions[j+1], buf.Positions[j+2]}
		x, y, depth, ok := proj.Project(p)
		if !ok {
			continue
		}
		r := proj.Scale(p, buf.Sizes[i])
		if r < 0.6 {
			r = 0.6
		}
		dots = append(dots, dot{
			x: x, y: y, r: r, depth: depth,
			fill: rgbHex(buf.Colors[j], buf.Colors[j+1], buf.Colors[j+2]),
		})
	}
	sort.Slice(dots, func(a, b int) bool { return dots[a].depth > dots[b].depth })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#000000"/>
<g style="mix-blend-mode:screen" fill-opacity="0.8">
`, width, height, width, height))

	for _, d := range dots {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>
`, d.x, d.y, d.r, d.fill))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func rgbHex(r, g, b float32) string {
	c := func(v float32) int {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 255
		}
		return int(v*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", c(r), c(g), c(b))
}

// PointerPathSVG draws the recorded index fingertip path in image space,
// breaking the line wherever the hand was lost. Pinch frames get a marker.
func PointerPathSVG(tr *storage.Trace, width, height int, strokeColor string) string {
	if tr == nil || tr.Len() < 2 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor))

	pen := false
	var marks []string
	for i := 0; i < tr.Len(); i++ {
		if tr.Hands[i] == 0 {
			pen = false
			continue
		}
		x := tr.IndexX[i] * float64(width)
		y := tr.IndexY[i] * float64(height)
		if pen {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
			pen = true
		}
		if tr.Pinch[i] < gesture.DefaultConfig().PinchThreshold {
			marks = append(marks, fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="none" stroke="#ff00ff"/>`, x, y))
		}
	}
	sb.WriteString(`"/>
`)
	for _, m := range marks {
		sb.WriteString(m + "\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

package radar

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/sonar"
)

// DirectionLabels are drawn around the Compass dial, clockwise from north.
var DirectionLabels = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

const (
	maxLabelLen  = 8
	spokeStep    = 30 // degrees between Sonar spokes
	fallbackHex  = "#03CC02"
	minPointGlow = 0.25
)

// Palette holds the styles derived from one dial color.
type Palette struct {
	base   colorful.Color
	center lipgloss.Style
	ring   lipgloss.Style
	dot    lipgloss.Style
	label  lipgloss.Style
}

// NewPalette derives ring, interior and label shades from hex. Unparseable
// colors fall back to the default dial green.
func NewPalette(hex string) Palette {
	base, err := colorful.Hex(hex)
	if err != nil {
		base, _ = colorful.Hex(fallbackHex)
	}
	return Palette{
		base:   base,
		center: lipgloss.NewStyle().Foreground(lipgloss.Color(base.Hex())).Bold(true),
		ring:   lipgloss.NewStyle().Foreground(shade(base, 0.55)),
		dot:    lipgloss.NewStyle().Foreground(shade(base, 0.3)),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color(base.Hex())).Bold(true),
	}
}

// Glow returns the color of dial furniture lit by the sweep trail.
func (p Palette) Glow(intensity float64) lipgloss.Color {
	return shade(p.base, 0.55+0.45*intensity)
}

// PointColor returns the color a point is drawn with at the given fade. An
// empty or invalid hex uses the dial color.
func (p Palette) PointColor(hex string, fade float64) lipgloss.Color {
	c := p.base
	if hex != "" {
		if pc, err := colorful.Hex(hex); err == nil {
			c = pc
		}
	}
	return shade(c, minPointGlow+(1-minPointGlow)*fade)
}

func shade(c colorful.Color, amount float64) lipgloss.Color {
	if amount > 1 {
		amount = 1
	}
	return lipgloss.Color(colorful.Color{}.BlendRgb(c, amount).Clamped().Hex())
}

// PointGlyph picks the symbol for a point. Points grow as they fade, from
// 0.75 to 1.25 of their base size.
func PointGlyph(fade float64) string {
	size := 0.75 + 0.5*(1-fade)
	switch {
	case size < 0.92:
		return "*"
	case size < 1.08:
		return "o"
	default:
		return "O"
	}
}

type overlay struct {
	text  string
	style lipgloss.Style
}

type dial struct {
	width, height    int
	centerX, centerY int
	radius           float64
	rings            []float64
	frame            sonar.Frame
	rotation         int
	palette          Palette
	cells            map[int]overlay
}

// Render produces the complete dial for one frame as a styled string.
func Render(width, height int, f sonar.Frame, color string) string {
	if width < 10 || height < 5 {
		return ""
	}

	centerX := width / 2
	centerY := height / 2
	radius := float64(min(centerX-1, int(float64(centerY-1)/config.AspectRatio)))
	if radius < 3 {
		radius = 3
	}

	d := &dial{
		width:    width,
		height:   height,
		centerX:  centerX,
		centerY:  centerY,
		radius:   radius,
		rings:    make([]float64, config.RingCount),
		frame:    f,
		rotation: f.Rotation(),
		palette:  NewPalette(color),
		cells:    make(map[int]overlay),
	}
	for i := range d.rings {
		d.rings[i] = radius * float64(i+1) / float64(config.RingCount)
	}

	if f.Variant == sonar.VariantCompass {
		d.placeDirections()
	}
	d.placePoints()

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if ov, ok := d.cells[row*width+col]; ok {
				sb.WriteString(ov.style.Render(ov.text))
				continue
			}
			sb.WriteString(d.renderCell(col, row))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (d *dial) inside(col, row int) bool {
	return col >= 0 && col < d.width && row >= 0 && row < d.height
}

func (d *dial) free(col, row, n int) bool {
	for i := 0; i < n; i++ {
		if !d.inside(col+i, row) {
			return false
		}
		if _, taken := d.cells[row*d.width+col+i]; taken {
			return false
		}
	}
	return true
}

func (d *dial) put(col, row int, text string, style lipgloss.Style) {
	for i, ch := range []rune(text) {
		if d.inside(col+i, row) {
			d.cells[row*d.width+col+i] = overlay{text: string(ch), style: style}
		}
	}
}

// placeDirections writes N..NW just inside the outer ring, turned with the
// dial rotation.
func (d *dial) placeDirections() {
	for i, label := range DirectionLabels {
		angle := d.rotation + i*45
		col, row := DialToCell(d.centerX, d.centerY, d.radius-1, 1, angle)
		col -= len(label) / 2
		d.put(col, row, label, d.palette.label)
	}
}

// placePoints writes visible points and their labels. A label that would
// collide with something already placed is tried one row below, then one
// row above, and dropped if neither fits.
func (d *dial) placePoints() {
	type placed struct {
		col, row int
		pv       sonar.PointView
	}
	var pts []placed
	for _, pv := range d.frame.Points {
		if !pv.Visible {
			continue
		}
		col, row := DialToCell(d.centerX, d.centerY, d.radius, pv.Distance, pv.Angle+d.rotation)
		if !d.inside(col, row) {
			continue
		}
		fade := sonar.Fade(pv.Visibility)
		style := lipgloss.NewStyle().Foreground(d.palette.PointColor(pv.Color, fade)).Bold(fade > 0.5)
		d.put(col, row, PointGlyph(fade), style)
		pts = append(pts, placed{col, row, pv})
	}

	for _, p := range pts {
		label := p.pv.Label
		if label == "" {
			continue
		}
		runes := []rune(label)
		if len(runes) > maxLabelLen {
			runes = runes[:maxLabelLen]
			label = string(runes)
		}
		n := len(runes)
		lc := p.col + 2
		if lc+n >= d.width {
			lc = p.col - n - 1
		}
		if lc < 0 {
			lc = 0
		}
		fade := sonar.Fade(p.pv.Visibility)
		style := lipgloss.NewStyle().Foreground(d.palette.PointColor(p.pv.Color, fade*0.8))
		for _, lr := range []int{p.row, p.row + 1, p.row - 1} {
			if d.free(lc, lr, n) {
				d.put(lc, lr, label, style)
				break
			}
		}
	}
}

func (d *dial) renderCell(col, row int) string {
	dist := CellDistance(col, row, d.centerX, d.centerY)
	if dist > d.radius+0.5 {
		return " "
	}
	if col == d.centerX && row == d.centerY {
		return d.palette.center.Render("+")
	}

	screen := CellDegrees(col, row, d.centerX, d.centerY)
	dialDeg := screen - float64(d.rotation)

	for _, ringR := range d.rings {
		if math.Abs(dist-ringR) < 0.8 {
			return d.furniture(RingChar(screen), screen)
		}
	}

	if d.frame.Variant == sonar.VariantSonar && dist <= d.radius && onSpoke(dialDeg, dist) {
		return d.furniture(SpokeChar(screen), screen)
	}

	if dist <= d.radius {
		return d.interior(screen)
	}
	return " "
}

// onSpoke reports whether a cell at deg lies on one of the Sonar dial's
// radial lines. The tolerance shrinks with distance so lines stay one cell wide.
func onSpoke(deg, dist float64) bool {
	if dist < 1 {
		return false
	}
	nearest := math.Round(deg/spokeStep) * spokeStep
	tolerance := math.Asin(math.Min(1, 0.5/dist)) * 180 / math.Pi
	return math.Abs(deg-nearest) <= tolerance
}

func (d *dial) intensity(screen float64) float64 {
	if !d.frame.Running {
		return 0
	}
	return TrailIntensity(float64(d.frame.Sweep+d.rotation), screen)
}

func (d *dial) furniture(ch rune, screen float64) string {
	i := d.intensity(screen)
	if i <= 0 {
		return d.palette.ring.Render(string(ch))
	}
	return lipgloss.NewStyle().Foreground(d.palette.Glow(i)).Render(string(ch))
}

func (d *dial) interior(screen float64) string {
	i := d.intensity(screen)
	if i <= 0 {
		return d.palette.dot.Render(".")
	}
	ch := "."
	if i > 0.8 {
		ch = ":"
	}
	return lipgloss.NewStyle().Foreground(d.palette.Glow(i)).Render(ch)
}

// RenderLegend produces the dial legend line.
func RenderLegend(width int, color string) string {
	p := NewPalette(color)
	legend := "   " +
		p.label.Render("* fresh") +
		"  " +
		p.ring.Render("o fading") +
		"  " +
		p.dot.Render("O stale")

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}

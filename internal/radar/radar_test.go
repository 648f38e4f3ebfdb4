package radar

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar.klederson.com/internal/sonar"
)

func TestCellDegrees(t *testing.T) {
	assert.InDelta(t, 0, CellDegrees(10, 5, 10, 10), 1e-9)
	assert.InDelta(t, 90, CellDegrees(15, 10, 10, 10), 1e-9)
	assert.InDelta(t, 180, CellDegrees(10, 15, 10, 10), 1e-9)
	assert.InDelta(t, 270, CellDegrees(5, 10, 10, 10), 1e-9)
}

func TestCellDistanceAspect(t *testing.T) {
	assert.InDelta(t, 4, CellDistance(14, 10, 10, 10), 1e-9)
	assert.InDelta(t, 4, CellDistance(10, 12, 10, 10), 1e-9, "rows count double")
}

func TestDialToCell(t *testing.T) {
	col, row := DialToCell(20, 10, 18, 0.5, 90)
	assert.Equal(t, 29, col)
	assert.Equal(t, 10, row)

	col, row = DialToCell(20, 10, 18, 1, 0)
	assert.Equal(t, 20, col)
	assert.Equal(t, 1, row)

	col, row = DialToCell(20, 10, 18, 0, 123)
	assert.Equal(t, 20, col)
	assert.Equal(t, 10, row)
}

func TestRingAndSpokeChars(t *testing.T) {
	assert.Equal(t, '-', RingChar(0))
	assert.Equal(t, '|', RingChar(90))
	assert.Equal(t, '-', RingChar(-180))

	assert.Equal(t, '|', SpokeChar(0))
	assert.Equal(t, '/', SpokeChar(45))
	assert.Equal(t, '-', SpokeChar(90))
	assert.Equal(t, '\\', SpokeChar(135))
	assert.Equal(t, '|', SpokeChar(180))
	assert.Equal(t, '/', SpokeChar(225))
}

func TestTrailIntensity(t *testing.T) {
	assert.Equal(t, 1.0, TrailIntensity(90, 90))
	assert.InDelta(t, 0.5, TrailIntensity(90, 60), 1e-9)
	assert.Zero(t, TrailIntensity(90, 100), "ahead of the beam")
	assert.Zero(t, TrailIntensity(90, 20), "past the trail")
	assert.InDelta(t, 0.5, TrailIntensity(10, 340), 1e-9, "trail wraps through north")
}

func TestPointGlyphGrowsAsItFades(t *testing.T) {
	assert.Equal(t, "*", PointGlyph(1))
	assert.Equal(t, "o", PointGlyph(0.5))
	assert.Equal(t, "O", PointGlyph(0))
}

func TestPaletteFallback(t *testing.T) {
	assert.Equal(t, NewPalette("#03CC02").base, NewPalette("not a color").base)

	p := NewPalette("#000000")
	assert.Equal(t, p.PointColor("", 1), p.PointColor("bogus", 1))
	assert.NotEqual(t, p.PointColor("#FF0000", 1), p.PointColor("", 1))
}

func renderLines(t *testing.T, f sonar.Frame) []string {
	t.Helper()
	out := ansi.Strip(Render(41, 21, f, "#03CC02"))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 21)
	for _, l := range lines {
		require.Len(t, l, 41)
	}
	return lines
}

func TestRenderTooSmall(t *testing.T) {
	assert.Empty(t, Render(5, 3, sonar.Frame{}, ""))
}

func TestRenderVisiblePoint(t *testing.T) {
	f := sonar.Frame{
		Variant: sonar.VariantSonar,
		Running: true,
		Sensors: true,
		Sweep:   95,
		Points: []sonar.PointView{
			{ID: "a", Label: "tag", Angle: 90, Distance: 0.5, Visibility: 1, Visible: true, Detected: true},
			{ID: "b", Label: "hidden", Angle: 270, Distance: 0.5, Visibility: 0},
		},
	}
	lines := renderLines(t, f)
	assert.Equal(t, byte('*'), lines[10][29])
	assert.Equal(t, "tag", lines[10][31:34])
	assert.Equal(t, byte('+'), lines[10][20])
	assert.NotContains(t, strings.Join(lines, "\n"), "hidden")
}

func TestRenderTruncatesLabelsByRune(t *testing.T) {
	f := sonar.Frame{
		Variant: sonar.VariantPlain,
		Running: true,
		Sensors: true,
		Points: []sonar.PointView{
			{ID: "a", Label: "Kühlschrank-Sensor", Angle: 90, Distance: 0.5, Visibility: 1, Visible: true, Detected: true},
		},
	}
	out := ansi.Strip(Render(41, 21, f, "#03CC02"))
	require.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "Kühlschr")
	assert.NotContains(t, out, "Kühlschra")
	for _, l := range strings.Split(out, "\n") {
		assert.Equal(t, 41, utf8.RuneCountInString(l))
	}
}

func TestRenderCompassDirections(t *testing.T) {
	f := sonar.Frame{Variant: sonar.VariantCompass, Heading: 90}
	lines := renderLines(t, f)
	assert.Equal(t, byte('N'), lines[10][37], "north turns with the heading")
	assert.Equal(t, byte('S'), lines[10][3])

	plain := renderLines(t, sonar.Frame{Variant: sonar.VariantPlain})
	assert.NotEqual(t, byte('N'), plain[10][37])
}

func TestRenderLegend(t *testing.T) {
	l := ansi.Strip(RenderLegend(60, "#03CC02"))
	assert.Contains(t, l, "* fresh")
	assert.Contains(t, l, "O stale")
}

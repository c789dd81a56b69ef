package scene

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/milk9111/tilepath/grid"
)

// PathStyle controls how a path is drawn.
type PathStyle struct {
	Color       color.Color
	LineWidth   float32
	PointRadius float32
	// FadeSeconds fades the path in; zero draws it fully opaque at once.
	FadeSeconds float32
}

// PathVisual draws a polyline through cell centres with a marker on each
// waypoint.
type PathVisual struct {
	points []point
	style  PathStyle
	alpha  float32
	fade   *gween.Tween
}

type point struct {
	x, y float32
}

// NewPathVisual returns a node drawing path. The node holds no reference to
// the path slice.
func NewPathVisual(path grid.Path, tileSize float64, style PathStyle) *Node {
	v := &PathVisual{
		points: make([]point, 0, len(path)),
		style:  style,
		alpha:  1,
	}
	for _, c := range path {
		x, y := c.Center(tileSize)
		v.points = append(v.points, point{x: float32(x), y: float32(y)})
	}
	if style.FadeSeconds > 0 {
		v.alpha = 0
		v.fade = gween.New(0, 1, style.FadeSeconds, ease.OutQuad)
	}
	return NewNode("path", v)
}

// Len returns the number of waypoints drawn.
func (v *PathVisual) Len() int { return len(v.points) }

// Alpha returns the current opacity in [0,1].
func (v *PathVisual) Alpha() float32 { return v.alpha }

// Update advances the fade-in.
func (v *PathVisual) Update(dt float32) {
	if v.fade == nil {
		return
	}
	a, done := v.fade.Update(dt)
	v.alpha = a
	if done {
		v.alpha = 1
		v.fade = nil
	}
}

func (v *PathVisual) Draw(dst *ebiten.Image, ox, oy float64) {
	if len(v.points) == 0 {
		return
	}
	clr := withAlpha(v.style.Color, v.alpha)
	x0, y0 := float32(ox), float32(oy)
	for i := 1; i < len(v.points); i++ {
		a, b := v.points[i-1], v.points[i]
		vector.StrokeLine(dst, x0+a.x, y0+a.y, x0+b.x, y0+b.y, v.style.LineWidth, clr, true)
	}
	for _, p := range v.points {
		vector.FillCircle(dst, x0+p.x, y0+p.y, v.style.PointRadius, clr, true)
	}
}

func withAlpha(c color.Color, alpha float32) color.Color {
	if c == nil {
		c = color.White
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float32(n.A) * alpha)
	return n
}

// Package ui provides the terminal renderer and the Bubble Tea view.
package ui

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/texture"
)

// layer orders what may overwrite what within a cell.
type layer int

const (
	layerEmpty layer = iota
	layerStar
	layerOrbit
	layerBody
	layerLabel
)

type cell struct {
	r     rune
	col   colorful.Color
	layer layer
	depth float64
}

// TermRenderer draws a scene into a grid of terminal cells. One cell is
// one viewport unit wide and two viewport units tall, matching the usual
// terminal glyph aspect.
type TermRenderer struct {
	cols, rows int
	cells      [][]cell
	frame      string
	plain      bool
	bg         colorful.Color
}

// NewTermRenderer creates a renderer for a viewport of w×h units.
func NewTermRenderer(w, h int) *TermRenderer {
	r := &TermRenderer{}
	r.Resize(w, h)
	return r
}

// SetPlain disables colour output; frames contain glyphs only.
func (r *TermRenderer) SetPlain(plain bool) { r.plain = plain }

// Resize sets the viewport in units; the grid is w columns by h/2 rows.
func (r *TermRenderer) Resize(w, h int) {
	r.cols = max(w, 0)
	r.rows = max(h/2, 0)
	r.cells = make([][]cell, r.rows)
	for y := range r.cells {
		r.cells[y] = make([]cell, r.cols)
	}
}

// Size returns the grid size in cells.
func (r *TermRenderer) Size() (cols, rows int) { return r.cols, r.rows }

// Probe reports whether there is anything to draw into.
func (r *TermRenderer) Probe() error {
	if r.cols <= 0 || r.rows <= 0 {
		return scene.ErrEnvironmentUnsupported
	}
	return nil
}

// Frame returns the last rendered frame.
func (r *TermRenderer) Frame() string { return r.frame }

// Render draws s and stores the result for Frame.
func (r *TermRenderer) Render(s *scene.Scene) error {
	if err := r.Probe(); err != nil {
		return err
	}
	r.clear()
	r.bg = s.Background

	cam := s.Camera
	if s.Stars.Visible {
		r.drawStars(s, cam)
	}
	for _, o := range s.Orbits {
		r.drawOrbit(o, cam)
	}
	r.drawMeshes(s, cam)
	if s.Labels.Visible() {
		r.drawLabels(s, cam)
	}

	r.frame = r.compose()
	return nil
}

func (r *TermRenderer) clear() {
	for y := range r.cells {
		for x := range r.cells[y] {
			r.cells[y][x] = cell{r: ' ', depth: math.Inf(1)}
		}
	}
}

// toCell maps normalized device coordinates to fractional cell
// coordinates.
func (r *TermRenderer) toCell(x, y float64) (float64, float64) {
	return (x + 1) / 2 * float64(r.cols), (1 - y) / 2 * float64(r.rows)
}

// cellIndex returns the cell containing fractional coordinate f. Points
// left of or above the grid get negative indices, which put drops.
func cellIndex(f float64) int { return int(math.Floor(f)) }

func (r *TermRenderer) put(cx, cy int, c cell) {
	if cx < 0 || cx >= r.cols || cy < 0 || cy >= r.rows {
		return
	}
	cur := &r.cells[cy][cx]
	if c.layer > cur.layer || (c.layer == cur.layer && c.depth < cur.depth) {
		*cur = c
	}
}

func (r *TermRenderer) drawStars(s *scene.Scene, cam *scene.Camera) {
	col := s.Stars.Color.BlendRgb(s.Background, 0.65)
	for _, p := range s.Stars.Points {
		x, y, d, ok := cam.Project(p)
		if !ok || math.Abs(x) > 1 || math.Abs(y) > 1 {
			continue
		}
		fx, fy := r.toCell(x, y)
		r.put(cellIndex(fx), cellIndex(fy), cell{r: '·', col: col, layer: layerStar, depth: d})
	}
}

func (r *TermRenderer) drawOrbit(o *scene.OrbitLine, cam *scene.Camera) {
	col := r.bg.BlendRgb(o.Color, o.Opacity)
	for i := 1; i < len(o.Points); i++ {
		x0, y0, d0, ok0 := cam.Project(o.Points[i-1])
		x1, y1, d1, ok1 := cam.Project(o.Points[i])
		if !ok0 || !ok1 {
			continue
		}
		ax, ay := r.toCell(x0, y0)
		bx, by := r.toCell(x1, y1)
		steps := int(math.Max(math.Abs(bx-ax), math.Abs(by-ay))) + 1
		if steps > 4*(r.cols+r.rows) {
			continue
		}
		for k := 0; k <= steps; k++ {
			t := float64(k) / float64(steps)
			r.put(cellIndex(ax+(bx-ax)*t), cellIndex(ay+(by-ay)*t), cell{
				r:     '·',
				col:   col,
				layer: layerOrbit,
				depth: d0 + (d1-d0)*t,
			})
		}
	}
}

var bodyGlyphs = map[scene.BodyID]rune{
	scene.Sun:      '☉',
	scene.Earth:    '●',
	scene.Mars:     '●',
	scene.Jupiter:  '◉',
	scene.Asteroid: '•',
}

type projected struct {
	m      *scene.Mesh
	cx, cy float64 // fractional cell centre
	rx, ry float64 // radius in cells
	depth  float64
}

func (r *TermRenderer) drawMeshes(s *scene.Scene, cam *scene.Camera) {
	var bodies []projected
	for _, m := range s.Meshes {
		x, y, d, ok := cam.Project(m.State.Position)
		if !ok {
			continue
		}
		cx, cy := r.toCell(x, y)
		ndc := cam.ProjectedRadius(m.Body.DisplayRadius, d)
		ry := ndc * float64(r.rows) / 2
		bodies = append(bodies, projected{m: m, cx: cx, cy: cy, rx: 2 * ry, ry: ry, depth: d})
	}
	// Far to near.
	slices.SortFunc(bodies, func(a, b projected) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		default:
			return 0
		}
	})

	light := pointLight(s)
	for _, b := range bodies {
		if b.m.Glow != nil && b.ry*b.m.Glow.Scale >= 1 {
			r.drawGlow(b)
		}
		if b.ry < 1 {
			glyph, ok := bodyGlyphs[b.m.Body.ID]
			if !ok {
				glyph = '•'
			}
			r.put(cellIndex(b.cx), cellIndex(b.cy), cell{r: glyph, col: b.m.Average, layer: layerBody, depth: b.depth})
			continue
		}
		r.drawDisc(b, cam, light, ambient(s))
	}
}

func (r *TermRenderer) drawGlow(b projected) {
	g := b.m.Glow
	rx, ry := b.rx*g.Scale, b.ry*g.Scale
	col := g.Color.BlendRgb(r.bg, 1-g.Opacity)
	r.eachCellIn(b.cx, b.cy, rx, ry, func(x, y int, _, _ float64) {
		r.put(x, y, cell{r: '░', col: col, layer: layerBody, depth: b.depth + b.m.Body.DisplayRadius})
	})
}

func (r *TermRenderer) drawDisc(b projected, cam *scene.Camera, light astro.Vec3, amb float64) {
	centre := b.m.State.Position
	r.eachCellIn(b.cx, b.cy, b.rx, b.ry, func(x, y int, u, v float64) {
		// View-space normal of the visible hemisphere.
		nz := math.Sqrt(math.Max(0, 1-u*u-v*v))
		n := cam.Orientation.Rotate(astro.Vec3{X: u, Y: -v, Z: nz})

		col := b.m.Average
		if b.m.Texture != nil {
			local := inverseEuler(n, b.m.State.Rotation)
			tu := 0.5 + math.Atan2(local.Z, local.X)/(2*math.Pi)
			tv := 0.5 - math.Asin(math.Max(-1, math.Min(1, local.Y)))/math.Pi
			col = texture.Sample(b.m.Texture, tu, tv)
		}
		if !b.m.Emissive {
			toLight := light.Sub(centre).Normalized()
			lit := math.Min(1, amb+math.Max(0, n.Dot(toLight)))
			col = colorful.Color{}.BlendRgb(col, lit)
		}
		r.put(x, y, cell{r: '█', col: col, layer: layerBody, depth: b.depth - nz*b.m.Body.DisplayRadius})
	})
}

// eachCellIn calls fn for every cell whose centre lies inside the
// ellipse, with (u, v) the centre's offset scaled to the unit disc.
func (r *TermRenderer) eachCellIn(cx, cy, rx, ry float64, fn func(x, y int, u, v float64)) {
	if rx <= 0 || ry <= 0 {
		return
	}
	x0, x1 := max(cellIndex(cx-rx), 0), min(cellIndex(cx+rx)+1, r.cols-1)
	y0, y1 := max(cellIndex(cy-ry), 0), min(cellIndex(cy+ry)+1, r.rows-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			u := (float64(x) + 0.5 - cx) / rx
			v := (float64(y) + 0.5 - cy) / ry
			if u*u+v*v <= 1 {
				fn(x, y, u, v)
			}
		}
	}
}

func (r *TermRenderer) drawLabels(s *scene.Scene, cam *scene.Camera) {
	labelCol := colorful.Color{R: 1, G: 1, B: 1}
	for _, l := range s.Labels.Labels() {
		x, y, _, ok := cam.Project(l.Position)
		if !ok {
			continue
		}
		fx, fy := r.toCell(x, y)
		row := cellIndex(fy)
		if row < 0 || row >= r.rows {
			continue
		}
		text := []rune(l.Text)
		start := cellIndex(fx) - len(text)/2
		if r.labelCollides(row, start, len(text)) {
			continue
		}
		for i, ch := range text {
			r.put(start+i, row, cell{r: ch, col: labelCol, layer: layerLabel})
		}
	}
}

func (r *TermRenderer) labelCollides(row, start, n int) bool {
	for x := max(start, 0); x < min(start+n, r.cols); x++ {
		if r.cells[row][x].layer == layerLabel {
			return true
		}
	}
	return false
}

// compose renders the grid to a string, styling runs of equal colour
// over the scene background.
func (r *TermRenderer) compose() string {
	var b strings.Builder
	bgStyle := lipgloss.NewStyle().Background(lipgloss.Color(r.bg.Clamped().Hex()))
	for y, row := range r.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run []rune
		var runCol colorful.Color
		flush := func() {
			if len(run) == 0 {
				return
			}
			if r.plain {
				b.WriteString(string(run))
			} else {
				b.WriteString(bgStyle.Foreground(lipgloss.Color(runCol.Clamped().Hex())).Render(string(run)))
			}
			run = run[:0]
		}
		for _, c := range row {
			col := c.col
			if c.layer == layerEmpty {
				col = r.bg
			}
			if col != runCol {
				flush()
				runCol = col
			}
			run = append(run, c.r)
		}
		flush()
	}
	return b.String()
}

func pointLight(s *scene.Scene) astro.Vec3 {
	for _, l := range s.Lights {
		if l.Kind == scene.PointLight {
			return l.Position
		}
	}
	return astro.Vec3{}
}

func ambient(s *scene.Scene) float64 {
	var a float64
	for _, l := range s.Lights {
		if l.Kind == scene.AmbientLight {
			lum := (l.Color.R + l.Color.G + l.Color.B) / 3
			a += lum * l.Intensity
		}
	}
	return a
}

// inverseEuler undoes an XYZ Euler rotation.
func inverseEuler(v, e astro.Vec3) astro.Vec3 {
	v = rotX(v, -e.X)
	v = rotY(v, -e.Y)
	return rotZ(v, -e.Z)
}

func rotX(v astro.Vec3, a float64) astro.Vec3 {
	s, c := math.Sincos(a)
	return astro.Vec3{X: v.X, Y: v.Y*c - v.Z*s, Z: v.Y*s + v.Z*c}
}

func rotY(v astro.Vec3, a float64) astro.Vec3 {
	s, c := math.Sincos(a)
	return astro.Vec3{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
}

func rotZ(v astro.Vec3, a float64) astro.Vec3 {
	s, c := math.Sincos(a)
	return astro.Vec3{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c, Z: v.Z}
}

package sfs

import (
	"context"
	"encoding/json"
	"math"
	"strings"
)

// Vec3 is a world-space point sent to /draw. Use V2 for points on the z=0 plane.
type Vec3 struct {
	X, Y, Z float64
}

func V2(x, y float64) Vec3 { return Vec3{X: x, Y: y} }

func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

// Color components are in 0..1.
type Color struct {
	R, G, B, A float64
}

// RGB is an opaque color.
func RGB(r, g, b float64) Color { return Color{R: r, G: g, B: b, A: 1} }

func RGBA(r, g, b, a float64) Color { return Color{R: r, G: g, B: b, A: a} }

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{c.R, c.G, c.B, c.A})
}

// Style holds the optional drawing attributes. Nil fields are left to the server.
type Style struct {
	Color   *Color
	Width   *float64
	Sorting *float64
	Layer   *float64
}

type drawCommand struct {
	Cmd        string    `json:"cmd"`
	Start      *Vec3     `json:"start,omitempty"`
	End        *Vec3     `json:"end,omitempty"`
	Center     []float64 `json:"center,omitempty"`
	Radius     *float64  `json:"radius,omitempty"`
	Resolution *int      `json:"resolution,omitempty"`
	Color      *Color    `json:"color,omitempty"`
	Width      *float64  `json:"width,omitempty"`
	Sorting    *float64  `json:"sorting,omitempty"`
	Layer      *float64  `json:"layer,omitempty"`
}

// minCircleResolution is the fewest segments the server is asked to draw a circle with.
const minCircleResolution = 8

// DrawAPI posts world-space drawing commands to /draw. Drawn shapes stay until Clear.
type DrawAPI struct {
	http *HTTPClient
}

func NewDrawAPI(h *HTTPClient) *DrawAPI {
	return &DrawAPI{http: h}
}

func (d *DrawAPI) post(ctx context.Context, cmd drawCommand) (any, error) {
	return d.http.PostJSON(ctx, "/draw", cmd)
}

// Clear removes everything drawn so far.
func (d *DrawAPI) Clear(ctx context.Context) (any, error) {
	return d.post(ctx, drawCommand{Cmd: "clear"})
}

// Line draws a segment from start to end.
func (d *DrawAPI) Line(ctx context.Context, start, end Vec3, style Style) (any, error) {
	return d.post(ctx, drawCommand{
		Cmd:     "line",
		Start:   &start,
		End:     &end,
		Color:   style.Color,
		Width:   style.Width,
		Sorting: style.Sorting,
		Layer:   style.Layer,
	})
}

// Circle draws an outline. resolution 0 lets the server choose; anything else is raised
// to at least 8. style.Width is not sent.
func (d *DrawAPI) Circle(ctx context.Context, center Vec2, radius float64, style Style, resolution int) (any, error) {
	cmd := drawCommand{
		Cmd:     "circle",
		Center:  []float64{center.X, center.Y},
		Radius:  &radius,
		Color:   style.Color,
		Sorting: style.Sorting,
		Layer:   style.Layer,
	}
	if resolution != 0 {
		res := max(minCircleResolution, resolution)
		cmd.Resolution = &res
	}
	return d.post(ctx, cmd)
}

// RegularPolygon draws a closed polygon of sides edges around center. Fewer than three
// sides draws nothing.
func (d *DrawAPI) RegularPolygon(ctx context.Context, center Vec2, radius float64, sides int, style Style, rotationDeg float64) error {
	if sides < 3 {
		return nil
	}
	rot := rotationDeg * math.Pi / 180
	pts := make([]Vec3, sides)
	for i := range pts {
		ang := rot + 2*math.Pi*float64(i)/float64(sides)
		pts[i] = V2(center.X+radius*math.Cos(ang), center.Y+radius*math.Sin(ang))
	}
	for i := range pts {
		if _, err := d.Line(ctx, pts[i], pts[(i+1)%sides], style); err != nil {
			return err
		}
	}
	return nil
}

// RectOptions controls Rect. A filled rect is one line as thick as the rect, laid along
// FillAxis ("x", the default, or "y").
type RectOptions struct {
	Style
	Filled   bool
	FillAxis string
}

// Rect draws the rectangle with corners p0 and p1 at the z of p0. Style.Width is ignored:
// outlines use the server default and fills use the rect extent.
func (d *DrawAPI) Rect(ctx context.Context, p0, p1 Vec3, opts RectOptions) error {
	xmin, xmax := math.Min(p0.X, p1.X), math.Max(p0.X, p1.X)
	ymin, ymax := math.Min(p0.Y, p1.Y), math.Max(p0.Y, p1.Y)
	z := p0.Z

	style := opts.Style
	style.Width = nil

	if opts.Filled {
		if strings.EqualFold(opts.FillAxis, "y") {
			cx := (xmin + xmax) / 2
			style.Width = Float(math.Max(1, xmax-xmin))
			_, err := d.Line(ctx, V3(cx, ymin, z), V3(cx, ymax, z), style)
			return err
		}
		cy := (ymin + ymax) / 2
		style.Width = Float(math.Max(1, ymax-ymin))
		_, err := d.Line(ctx, V3(xmin, cy, z), V3(xmax, cy, z), style)
		return err
	}
	return d.outline(ctx, xmin, ymin, xmax, ymax, z, style)
}

// RectOutline draws the four edges of the rectangle with corners p0 and p1.
func (d *DrawAPI) RectOutline(ctx context.Context, p0, p1 Vec3, style Style) error {
	return d.outline(ctx,
		math.Min(p0.X, p1.X), math.Min(p0.Y, p1.Y),
		math.Max(p0.X, p1.X), math.Max(p0.Y, p1.Y),
		p0.Z, style)
}

func (d *DrawAPI) outline(ctx context.Context, xmin, ymin, xmax, ymax, z float64, style Style) error {
	corners := [4]Vec3{
		V3(xmin, ymin, z),
		V3(xmax, ymin, z),
		V3(xmax, ymax, z),
		V3(xmin, ymax, z),
	}
	for i := range corners {
		if _, err := d.Line(ctx, corners[i], corners[(i+1)%4], style); err != nil {
			return err
		}
	}
	return nil
}

package charts

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	baseDPI     = 72
	maxTicks    = 8
	maxScale    = 8
	maxPixelDim = 8000
)

// Options controls the rasterized output size. The final image is
// Width*Scale by Height*Scale pixels; Scale only raises pixel density, the
// chart layout stays that of a Width x Height image.
type Options struct {
	Width  int
	Height int
	Scale  int
}

// Validate checks the output size bounds.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.Width > maxPixelDim || o.Height > maxPixelDim {
		return fmt.Errorf("chart dimensions must be at most %d, got %dx%d", maxPixelDim, o.Width, o.Height)
	}
	if o.Scale < 1 || o.Scale > maxScale {
		return fmt.Errorf("chart scale must be between 1 and %d, got %d", maxScale, o.Scale)
	}
	return nil
}

// Renderer rasterizes chart specs to PNG.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws the spec as a PNG into w.
func (r *Renderer) Render(spec Spec, opts Options, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	// Canvas points equal requested pixels, so DPI scaling yields exactly
	// Width*Scale x Height*Scale output pixels.
	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.Width), vg.Length(opts.Height)),
		vgimg.UseDPI(baseDPI*opts.Scale),
	)
	dc := draw.New(canvas)

	if spec.Kind == KindGrid {
		if err := drawGrid(spec, dc); err != nil {
			return err
		}
	} else {
		p, err := buildPlot(spec)
		if err != nil {
			return err
		}
		p.Draw(dc)
	}

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// RenderFile renders the spec into a PNG file, creating parent directories
// as needed.
func (r *Renderer) RenderFile(spec Spec, opts Options, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	return r.Render(spec, opts, file)
}

func drawGrid(spec Spec, dc draw.Canvas) error {
	if len(spec.Panels) == 0 {
		return fmt.Errorf("grid chart %q has no panels", spec.Title)
	}

	cols := 1
	if len(spec.Panels) > 1 {
		cols = 2
	}
	rows := (len(spec.Panels) + cols - 1) / cols

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Points(8),
		PadY:      vg.Points(8),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}

	for i, panel := range spec.Panels {
		p, err := buildPlot(panel)
		if err != nil {
			return err
		}
		p.Draw(tiles.At(dc, i%cols, i/cols))
	}
	return nil
}

func buildPlot(spec Spec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	switch spec.Kind {
	case KindLine:
		if err := addLines(p, spec); err != nil {
			return nil, err
		}
	case KindBar:
		if err := addBars(p, spec); err != nil {
			return nil, err
		}
	case KindHeatmap:
		if err := addHeatmap(p, spec); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	return p, nil
}

func addLines(p *plot.Plot, spec Spec) error {
	var labels []string
	for _, s := range spec.Series {
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i] = plotter.XY{X: float64(i), Y: pt.Value}
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("build line series %q: %w", s.Name, err)
		}
		line.Color = parseHexColor(s.Color)
		line.Width = vg.Points(2)

		p.Add(line)
		p.Legend.Add(s.Name, line)

		if len(s.Points) > len(labels) {
			labels = pointLabels(s.Points)
		}
	}

	p.X.Tick.Marker = labelTicks{labels: labels}
	p.Legend.Top = true
	return nil
}

func addBars(p *plot.Plot, spec Spec) error {
	offset := vg.Points(0)
	for _, s := range spec.Series {
		vals := make(plotter.Values, len(s.Points))
		for i, pt := range s.Points {
			vals[i] = pt.Value
		}

		bars, err := plotter.NewBarChart(vals, vg.Points(18))
		if err != nil {
			return fmt.Errorf("build bar series %q: %w", s.Name, err)
		}
		bars.Color = parseHexColor(s.Color)
		bars.LineStyle.Width = 0
		bars.Offset = offset
		offset += vg.Points(20)

		p.Add(bars)
		if len(spec.Series) > 1 {
			p.Legend.Add(s.Name, bars)
		}
	}

	if len(spec.Series) > 0 {
		p.NominalX(pointLabels(spec.Series[0].Points)...)
	}
	p.Legend.Top = true
	return nil
}

func addHeatmap(p *plot.Plot, spec Spec) error {
	if spec.Heat == nil || len(spec.Heat.Values) == 0 || len(spec.Heat.XLabels) == 0 {
		return fmt.Errorf("heatmap chart %q has no data", spec.Title)
	}

	hm := plotter.NewHeatMap(heatGrid{h: spec.Heat}, palette.Heat(12, 1))
	p.Add(hm)

	p.X.Tick.Marker = labelTicks{labels: spec.Heat.XLabels}
	p.Y.Tick.Marker = labelTicks{labels: spec.Heat.YLabels}
	return nil
}

// heatGrid adapts a Heatmap to the plotter.GridXYZ interface. Rows map to Y
// so the first row renders at the bottom.
type heatGrid struct {
	h *Heatmap
}

func (g heatGrid) Dims() (c, r int)   { return len(g.h.XLabels), len(g.h.YLabels) }
func (g heatGrid) X(c int) float64    { return float64(c) }
func (g heatGrid) Y(r int) float64    { return float64(r) }
func (g heatGrid) Z(c, r int) float64 { return g.h.Values[r][c] }

// labelTicks places category labels at integer positions, thinning them so a
// long axis stays readable.
type labelTicks struct {
	labels []string
}

func (lt labelTicks) Ticks(min, max float64) []plot.Tick {
	n := len(lt.labels)
	if n == 0 {
		return nil
	}

	step := 1
	if n > maxTicks {
		step = (n + maxTicks - 1) / maxTicks
	}

	ticks := make([]plot.Tick, 0, n/step+1)
	for i := 0; i < n; i += step {
		v := float64(i)
		if v < min || v > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: lt.labels[i]})
	}
	return ticks
}

func pointLabels(points []Point) []string {
	labels := make([]string, len(points))
	for i, pt := range points {
		labels[i] = pt.Label
	}
	return labels
}

// parseHexColor decodes #RRGGBB; anything unparseable falls back to the
// first palette color.
func parseHexColor(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

package analytics

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	// DefaultEChartsAssetsHost serves the ECharts runtime when no host is configured.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// XYPoint is implemented by the bivariate dataset points.
type XYPoint interface {
	XY() (float64, float64)
}

// XY implements XYPoint.
func (p SqftLotPoint) XY() (float64, float64) { return p.SqftLot, p.Price }

// XY implements XYPoint.
func (p FloorsPoint) XY() (float64, float64) { return p.Floors, p.Price }

// Axes names the two axes of a chart.
type Axes struct {
	X string
	Y string
}

// EChartsRenderer renders chart markup with go-echarts.
type EChartsRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// EChartsOption customizes an EChartsRenderer.
type EChartsOption func(*EChartsRenderer)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the ECharts theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost points the ECharts runtime at a CDN or local path.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		if host != "" {
			r.assetsHost = host
		}
	}
}

// WithChartHeight overrides the chart height (CSS length).
func WithChartHeight(height string) EChartsOption {
	return func(r *EChartsRenderer) {
		if height != "" {
			r.height = height
		}
	}
}

// NewEChartsRenderer builds a renderer with an uncached default configuration.
func NewEChartsRenderer(options ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost,
		height:     defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Pie renders categorical slices with their palette colors.
func (r *EChartsRenderer) Pie(title string, slices []CategoricalSlice) (string, error) {
	return r.cached(renderKey("pie", r.theme, title, slices), func() (string, error) {
		data := make([]opts.PieData, len(slices))
		for i, slice := range slices {
			data[i] = opts.PieData{
				Name:      slice.Label,
				Value:     slice.Value,
				ItemStyle: &opts.ItemStyle{Color: slice.Color()},
			}
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalOptions(title)...)
		pie.AddSeries(title, data)
		return renderChart(pie)
	})
}

// Scatter renders x/y pairs on two value axes.
func (r *EChartsRenderer) Scatter(title string, axes Axes, points [][2]float64) (string, error) {
	return r.cached(renderKey("scatter", r.theme, title, axes, points), func() (string, error) {
		data := make([]opts.ScatterData, len(points))
		for i, p := range points {
			data[i] = opts.ScatterData{Value: []float64{p[0], p[1]}}
		}
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(append(r.globalOptions(title),
			charts.WithXAxisOpts(opts.XAxis{Name: axes.X, Type: "value"}),
			charts.WithYAxisOpts(opts.YAxis{Name: axes.Y, Type: "value"}),
		)...)
		scatter.AddSeries(title, data)
		return renderChart(scatter)
	})
}

// Line renders y values over an ordinal x axis in input order.
func (r *EChartsRenderer) Line(title string, axes Axes, points [][2]float64) (string, error) {
	return r.cached(renderKey("line", r.theme, title, axes, points), func() (string, error) {
		labels := make([]string, len(points))
		data := make([]opts.LineData, len(points))
		for i, p := range points {
			labels[i] = strconv.FormatFloat(p[0], 'f', -1, 64)
			data[i] = opts.LineData{Value: p[1]}
		}
		line := charts.NewLine()
		line.SetGlobalOptions(append(r.globalOptions(title),
			charts.WithXAxisOpts(opts.XAxis{Name: axes.X}),
			charts.WithYAxisOpts(opts.YAxis{Name: axes.Y}),
		)...)
		line.SetXAxis(labels)
		line.AddSeries(axes.Y, data)
		return renderChart(line)
	})
}

// GroupedScatter plots every metric series as points over the model axis.
func (r *EChartsRenderer) GroupedScatter(title string, grouped GroupedSeries) (string, error) {
	return r.cached(renderKey("grouped-scatter", r.theme, title, grouped), func() (string, error) {
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(r.globalOptions(title)...)
		scatter.SetXAxis(displayModelLabels(grouped.Categories))
		for _, s := range grouped.Series {
			data := make([]opts.ScatterData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.ScatterData{Name: grouped.Categories[i], Value: v}
			}
			scatter.AddSeries(s.Key, data)
		}
		return renderChart(scatter)
	})
}

// GroupedLine plots every metric series as a line over the model axis.
func (r *EChartsRenderer) GroupedLine(title string, grouped GroupedSeries) (string, error) {
	return r.cached(renderKey("grouped-line", r.theme, title, grouped), func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalOptions(title)...)
		line.SetXAxis(displayModelLabels(grouped.Categories))
		for _, s := range grouped.Series {
			data := make([]opts.LineData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.LineData{Name: grouped.Categories[i], Value: v}
			}
			line.AddSeries(s.Key, data)
		}
		return renderChart(line)
	})
}

// GroupedBar renders one bar per metric for each model.
func (r *EChartsRenderer) GroupedBar(title string, grouped GroupedSeries) (string, error) {
	return r.cached(renderKey("grouped-bar", r.theme, title, grouped), func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalOptions(title)...)
		bar.SetXAxis(displayModelLabels(grouped.Categories))
		for _, s := range grouped.Series {
			data := make([]opts.BarData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.BarData{Name: grouped.Categories[i], Value: v}
			}
			bar.AddSeries(s.Key, data)
		}
		return renderChart(bar)
	})
}

func (r *EChartsRenderer) cached(key string, render func() (string, error)) (string, error) {
	if r.cache == nil || key == "" {
		return render()
	}
	return r.cache.GetOrRender(key, render)
}

func (r *EChartsRenderer) globalOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:      r.theme,
			Width:      "100%",
			Height:     r.height,
			AssetsHost: r.assetsHost,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("analytics: render chart: %w", err)
	}
	return buf.String(), nil
}

func displayModelLabels(models []string) []string {
	out := make([]string, len(models))
	for i, model := range models {
		out[i] = ModelLabel(model)
	}
	return out
}

func xyPairs[P XYPoint](points []P) [][2]float64 {
	out := make([][2]float64, len(points))
	for i, p := range points {
		x, y := p.XY()
		out[i] = [2]float64{x, y}
	}
	return out
}

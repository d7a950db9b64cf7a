package analytics

import "fmt"

// PerformanceRenderer draws the model performance series in one chart family.
type PerformanceRenderer interface {
	Mode() ChartMode
	Render(title string, series []PerformancePoint) (string, error)
}

// ModeController picks the single renderer used for the active chart mode.
type ModeController struct {
	renderers map[ChartMode]PerformanceRenderer
}

// NewModeController registers renderers by mode. With no renderers it falls
// back to the go-echarts implementations.
func NewModeController(renderers ...PerformanceRenderer) *ModeController {
	if len(renderers) == 0 {
		renderers = EChartsPerformanceRenderers(NewEChartsRenderer())
	}
	c := &ModeController{renderers: make(map[ChartMode]PerformanceRenderer, len(renderers))}
	for _, r := range renderers {
		c.renderers[r.Mode()] = r
	}
	return c
}

// Select returns the renderer bound to mode.
func (c *ModeController) Select(mode ChartMode) (PerformanceRenderer, error) {
	r, ok := c.renderers[mode]
	if !ok {
		return nil, fmt.Errorf("analytics: no renderer for chart mode %q", mode)
	}
	return r, nil
}

// Render draws series with the renderer for mode. The other renderers are not invoked.
func (c *ModeController) Render(mode ChartMode, title string, series []PerformancePoint) (string, error) {
	r, err := c.Select(mode)
	if err != nil {
		return "", err
	}
	return r.Render(title, series)
}

type echartsPerformanceRenderer struct {
	mode   ChartMode
	charts *EChartsRenderer
}

// EChartsPerformanceRenderers returns the scatter, line and bar renderers.
func EChartsPerformanceRenderers(charts *EChartsRenderer) []PerformanceRenderer {
	out := make([]PerformanceRenderer, 0, 3)
	for _, mode := range ChartModes() {
		out = append(out, echartsPerformanceRenderer{mode: mode, charts: charts})
	}
	return out
}

func (r echartsPerformanceRenderer) Mode() ChartMode { return r.mode }

func (r echartsPerformanceRenderer) Render(title string, series []PerformancePoint) (string, error) {
	grouped := ToGroupedSeries(series)
	switch r.mode {
	case ChartModeScatter:
		return r.charts.GroupedScatter(title, grouped)
	case ChartModeLine:
		return r.charts.GroupedLine(title, grouped)
	case ChartModeBar:
		return r.charts.GroupedBar(title, grouped)
	default:
		return "", fmt.Errorf("analytics: unsupported chart mode %q", r.mode)
	}
}

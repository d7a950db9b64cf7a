package analytics

import (
	"embed"
	"encoding/json"
	"fmt"

	template "github.com/goliatone/go-template"
)

// TemplatePrediction renders a prediction outcome fragment under "outcome".
const TemplatePrediction = "predict"

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded templates.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

// TemplateData converts values into plain maps and slices keyed by their JSON
// names, so templates address fields the same way the JSON API exposes them.
func TemplateData(values map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("analytics: encode template data: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("analytics: decode template data: %w", err)
	}
	return out, nil
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
	"github.com/goliatone/go-estate-dashboard/components/analytics/commands"
	"github.com/goliatone/go-estate-dashboard/components/analytics/queries"
)

// ViewProvider opens and looks up live views.
type ViewProvider interface {
	OpenView(ctx context.Context) (*analytics.View, error)
	View(id string) (*analytics.View, error)
}

// PageData returns the extra template values of the analytics page.
func PageData(basePath, assetsHost string) map[string]any {
	if assetsHost == "" {
		assetsHost = analytics.DefaultEChartsAssetsHost
	}
	return map[string]any{
		"base_path":   strings.TrimRight(basePath, "/"),
		"assets_host": assetsHost,
		"models":      analytics.PredictionModelOptions(),
	}
}

// FilterPayload is the body of a filter update.
type FilterPayload struct {
	Bedroom  *int `json:"bedroom"`
	Bathroom *int `json:"bathroom"`
}

// ModePayload is the body of a chart mode update.
type ModePayload struct {
	Mode string `json:"mode"`
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	API        Executor
	Views      ViewProvider
	Renderer   analytics.Renderer
	BasePath   string
	AssetsHost string
}

// Routes mounts every handler on a ServeMux under BasePath.
func (h *Handlers) Routes() *http.ServeMux {
	base := strings.TrimRight(h.BasePath, "/")
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/analytics", h.HandleOpenView)
	mux.HandleFunc("GET "+base+"/analytics/{id}", withID(h.HandlePanels))
	mux.HandleFunc("GET "+base+"/analytics/{id}/state", withID(h.HandleState))
	mux.HandleFunc("POST "+base+"/analytics/{id}/filters", withID(h.HandleSetFilters))
	mux.HandleFunc("POST "+base+"/analytics/{id}/mode", withID(h.HandleSetMode))
	mux.HandleFunc("POST "+base+"/analytics/{id}/refresh", withID(h.HandleRefresh))
	mux.HandleFunc("DELETE "+base+"/analytics/{id}", withID(h.HandleCloseView))
	mux.HandleFunc("GET "+base+"/analytics/{id}/events", withID(h.HandleEvents))
	mux.HandleFunc("GET "+base+"/analytics/{id}/ws", withID(h.HandleWebSocket))
	mux.HandleFunc("POST "+base+"/predict", h.HandlePredict)
	mux.HandleFunc("GET "+base+"/house-prices", h.HandleHousePrices)
	return mux
}

func withID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, r.PathValue("id"))
	}
}

// HandleOpenView activates a new view and renders the analytics page.
func (h *Handlers) HandleOpenView(w http.ResponseWriter, r *http.Request) {
	if h.Views == nil {
		writeError(w, http.StatusNotImplemented, errNotConfigured)
		return
	}
	view, err := h.Views.OpenView(r.Context())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	var buf bytes.Buffer
	if err := view.Render(&buf, analytics.TemplatePage, PageData(h.BasePath, h.AssetsHost)); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandlePanels renders the panels fragment of a view.
func (h *Handlers) HandlePanels(w http.ResponseWriter, r *http.Request, viewID string) {
	if h.Views == nil {
		writeError(w, http.StatusNotImplemented, errNotConfigured)
		return
	}
	view, err := h.Views.View(viewID)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	var buf bytes.Buffer
	if err := view.Render(&buf, analytics.TemplatePanels, nil); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleState returns the view model as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request, viewID string) {
	vm, err := h.API.ViewModel(r.Context(), queries.ViewModelInput{ViewID: viewID})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

func (h *Handlers) HandleSetFilters(w http.ResponseWriter, r *http.Request, viewID string) {
	var payload FilterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req := analytics.SetFiltersRequest{ViewID: viewID, Bedroom: payload.Bedroom, Bathroom: payload.Bathroom}
	if err := h.API.SetFilters(r.Context(), req); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) HandleSetMode(w http.ResponseWriter, r *http.Request, viewID string) {
	var payload ModePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.API.SetMode(r.Context(), analytics.SetModeRequest{ViewID: viewID, Mode: payload.Mode}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request, viewID string) {
	if err := h.API.Refresh(r.Context(), commands.RefreshViewInput{ViewID: viewID}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) HandleCloseView(w http.ResponseWriter, r *http.Request, viewID string) {
	if err := h.API.CloseView(r.Context(), commands.CloseViewInput{ViewID: viewID}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvents streams view events over Server-Sent Events.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request, viewID string) {
	view, ok := h.lookup(w, viewID)
	if !ok {
		return
	}
	view.ServeSSE(w, r)
}

// HandleWebSocket streams view events over a websocket.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request, viewID string) {
	view, ok := h.lookup(w, viewID)
	if !ok {
		return
	}
	view.ServeWebSocket(w, r)
}

func (h *Handlers) lookup(w http.ResponseWriter, viewID string) (*analytics.View, bool) {
	if h.Views == nil {
		writeError(w, http.StatusNotImplemented, errNotConfigured)
		return nil, false
	}
	view, err := h.Views.View(viewID)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return nil, false
	}
	return view, true
}

// HandlePredict accepts JSON or form submissions. With ?format=html the
// outcome is rendered as a fragment.
func (h *Handlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	req, err := decodePrediction(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	outcome, err := h.API.Predict(r.Context(), req)
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	status := PredictionStatus(outcome)
	if r.URL.Query().Get("format") == "html" && h.Renderer != nil {
		data, err := analytics.TemplateData(map[string]any{"outcome": outcome})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		var buf bytes.Buffer
		if _, err := h.Renderer.Render(analytics.TemplatePrediction, data, &buf); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write(buf.Bytes())
		return
	}
	writeJSON(w, status, outcome)
}

const maxFormMemory = 1 << 20

func decodePrediction(r *http.Request) (analytics.PredictionRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return analytics.PredictionRequest{}, err
		}
		return analytics.PredictionRequestFromForm(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return analytics.PredictionRequest{}, err
		}
		return analytics.PredictionRequestFromForm(r.PostForm), nil
	default:
		var req analytics.PredictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return analytics.PredictionRequest{}, err
		}
		if req.Model == "" {
			req.Model = string(analytics.DefaultPredictionModel)
		}
		return req, nil
	}
}

func (h *Handlers) HandleHousePrices(w http.ResponseWriter, r *http.Request) {
	markers, err := h.API.HousePrices(r.Context())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, markers)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

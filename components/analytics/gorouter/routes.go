package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
	"github.com/goliatone/go-estate-dashboard/components/analytics/commands"
	"github.com/goliatone/go-estate-dashboard/components/analytics/httpapi"
	"github.com/goliatone/go-estate-dashboard/components/analytics/queries"
)

// Config wires go-router with the analytics service, APIs and push updates.
type Config[T any] struct {
	Router     router.Router[T]
	Views      httpapi.ViewProvider
	API        httpapi.Executor
	Renderer   analytics.Renderer
	BasePath   string
	AssetsHost string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for analytics endpoints.
type RouteConfig struct {
	HTML        string
	Panels      string
	State       string
	Filters     string
	Mode        string
	Refresh     string
	WebSocket   string
	Predict     string
	HousePrices string
}

// Register mounts analytics routes (HTML, JSON, WebSocket) on a go-router router.
// Push updates go over the websocket route only; the SSE stream is served by
// the net/http handlers.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Views == nil {
		return errors.New("gorouter: view provider is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/estate"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		view, err := cfg.Views.OpenView(ctx.Context())
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		var buf bytes.Buffer
		if err := view.Render(&buf, analytics.TemplatePage, httpapi.PageData(base, cfg.AssetsHost)); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Panels, router.WrapHandler(func(ctx router.Context) error {
		view, err := cfg.Views.View(ctx.Param("id"))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		var buf bytes.Buffer
		if err := view.Render(&buf, analytics.TemplatePanels, nil); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, cfg.Renderer, routes)
	}

	registerWebSocket(group, cfg.Views, routes.WebSocket)
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, renderer analytics.Renderer, routes RouteConfig) {
	r.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		vm, err := api.ViewModel(ctx.Context(), queries.ViewModelInput{ViewID: ctx.Param("id")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, vm)
	}))

	r.Post(routes.Filters, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.FilterPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		req := analytics.SetFiltersRequest{
			ViewID:   ctx.Param("id"),
			Bedroom:  payload.Bedroom,
			Bathroom: payload.Bathroom,
		}
		if err := api.SetFilters(ctx.Context(), req); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Post(routes.Mode, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.ModePayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		req := analytics.SetModeRequest{ViewID: ctx.Param("id"), Mode: payload.Mode}
		if err := api.SetMode(ctx.Context(), req); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context(), commands.RefreshViewInput{ViewID: ctx.Param("id")}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Delete(routes.Panels, router.WrapHandler(func(ctx router.Context) error {
		if err := api.CloseView(ctx.Context(), commands.CloseViewInput{ViewID: ctx.Param("id")}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.NoContent(http.StatusNoContent)
	}))

	r.Post(routes.Predict, router.WrapHandler(func(ctx router.Context) error {
		req, err := decodePrediction(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		outcome, err := api.Predict(ctx.Context(), req)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		status := httpapi.PredictionStatus(outcome)
		if ctx.Query("format") == "html" && renderer != nil {
			data, err := analytics.TemplateData(map[string]any{"outcome": outcome})
			if err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			var buf bytes.Buffer
			if _, err := renderer.Render(analytics.TemplatePrediction, data, &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Status(status).Send(buf.Bytes())
		}
		return ctx.JSON(status, outcome)
	}))

	r.Get(routes.HousePrices, router.WrapHandler(func(ctx router.Context) error {
		markers, err := api.HousePrices(ctx.Context())
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, markers)
	}))
}

func decodePrediction(ctx router.Context) (analytics.PredictionRequest, error) {
	body := ctx.Body()
	if strings.HasPrefix(ctx.Header("Content-Type"), "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return analytics.PredictionRequest{}, err
		}
		return analytics.PredictionRequestFromForm(values), nil
	}
	var req analytics.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return analytics.PredictionRequest{}, err
	}
	if req.Model == "" {
		req.Model = string(analytics.DefaultPredictionModel)
	}
	return req, nil
}

func registerWebSocket[T any](r router.Router[T], views httpapi.ViewProvider, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		view, err := views.View(ws.Param("id"))
		if err != nil {
			return ws.Close()
		}
		if err := view.Stream(ws.Context(), func(payload analytics.EventPayload) error {
			return ws.WriteJSON(payload)
		}); err != nil {
			return err
		}
		return ws.Close()
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/analytics"
	}
	if routes.Panels == "" {
		routes.Panels = "/analytics/:id"
	}
	if routes.State == "" {
		routes.State = "/analytics/:id/state"
	}
	if routes.Filters == "" {
		routes.Filters = "/analytics/:id/filters"
	}
	if routes.Mode == "" {
		routes.Mode = "/analytics/:id/mode"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/analytics/:id/refresh"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/analytics/:id/ws"
	}
	if routes.Predict == "" {
		routes.Predict = "/predict"
	}
	if routes.HousePrices == "" {
		routes.HousePrices = "/house-prices"
	}
	return routes
}

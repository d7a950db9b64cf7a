package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-estate-dashboard/components/analytics"
	"github.com/goliatone/go-estate-dashboard/components/analytics/gorouter"
	"github.com/goliatone/go-estate-dashboard/components/analytics/httpapi"
	"github.com/goliatone/go-estate-dashboard/internal/config"
	"github.com/goliatone/go-estate-dashboard/pkg/estate"
)

type cli struct {
	Config  string     `short:"c" type:"path" help:"Path to a YAML config file."`
	Serve   serveCmd   `cmd:"" default:"1" help:"Serve the analytics dashboard."`
	Fetch   fetchCmd   `cmd:"" help:"Fetch a dataset from the backend and print it as JSON."`
	Predict predictCmd `cmd:"" help:"Request a price prediction."`
}

type serveCmd struct {
	Addr string `help:"Listen address (overrides server.addr)."`
}

type fetchCmd struct {
	Dataset string `arg:"" enum:"eda,performance,house-prices" help:"Dataset to fetch (eda, performance, house-prices)."`
}

type predictCmd struct {
	Bedrooms   string `required:"" help:"Number of bedrooms."`
	Bathrooms  string `required:"" help:"Number of bathrooms."`
	SqftLiving string `required:"" name:"sqft-living" help:"Living area in square feet."`
	SqftLot    string `required:"" name:"sqft-lot" help:"Lot area in square feet."`
	Floors     string `required:"" help:"Number of floors."`
	Waterfront string `default:"0" help:"1 for waterfront properties."`
	Model      string `default:"ridge" enum:"ridge,decision_tree,random_forest" help:"Prediction model."`
}

type runtime struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger
	client estate.Client
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("estated"),
		kong.Description("Real estate analytics dashboard and prediction client."),
		kong.UsageOnError(),
	)
	rt, err := newRuntime(context.Background(), c.Config)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(rt)
	ctx.FatalIfErrorf(err)
}

func newRuntime(ctx context.Context, path string) (*runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	client, err := newClient(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return &runtime{ctx: ctx, cfg: cfg, logger: logger, client: client}, nil
}

func newClient(cfg config.BackendConfig) (estate.Client, error) {
	if cfg.Mock {
		data := estate.DemoData()
		if cfg.Fixtures != "" {
			loaded, err := estate.LoadMockData(cfg.Fixtures)
			if err != nil {
				return nil, err
			}
			data = loaded
		}
		return estate.NewMockClient(data), nil
	}
	return estate.NewHTTPClient(estate.HTTPConfig{
		BaseURL:     cfg.BaseURL,
		PriceMapURL: cfg.PriceMapURL,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.Timeout,
	})
}

func (cmd *serveCmd) Run(rt *runtime) error {
	cfg := rt.cfg
	addr := cfg.Server.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	renderer, err := analytics.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("estated: template renderer: %w", err)
	}
	charts := analytics.NewEChartsRenderer(
		analytics.WithChartCache(analytics.NewChartCache(cfg.Charts.CacheTTL)),
		analytics.WithChartTheme(cfg.Charts.Theme),
		analytics.WithChartAssetsHost(cfg.Charts.AssetsHost),
		analytics.WithChartHeight(cfg.Charts.Height),
	)
	telemetry := analytics.SlogTelemetry{Logger: rt.logger}
	service := analytics.NewService(analytics.Options{
		Source:    rt.client,
		Charts:    charts,
		Renderer:  renderer,
		Logger:    rt.logger,
		Telemetry: telemetry,
		MaxViews:  cfg.Server.MaxViews,
	})
	defer service.Close()

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Views:      service,
		API:        httpapi.NewCommandExecutor(service, telemetry),
		Renderer:   renderer,
		BasePath:   cfg.Server.BasePath,
		AssetsHost: cfg.Charts.AssetsHost,
	}); err != nil {
		return fmt.Errorf("estated: register routes: %w", err)
	}

	rt.logger.Info("estated: serving analytics",
		"addr", addr,
		"page", cfg.Server.BasePath+"/analytics",
		"backend", cfg.Backend.BaseURL,
		"mock", cfg.Backend.Mock,
	)
	if err := server.Serve(addr); err != nil {
		return fmt.Errorf("estated: server error: %w", err)
	}
	return nil
}

func (cmd *fetchCmd) Run(rt *runtime) error {
	ctx := rt.ctx
	var (
		out any
		err error
	)
	switch cmd.Dataset {
	case "eda":
		out, err = rt.client.FetchExploratoryDataset(ctx)
	case "performance":
		out, err = rt.client.FetchModelPerformance(ctx)
	case "house-prices":
		var prices []analytics.HousePrice
		prices, err = rt.client.FetchHousePrices(ctx)
		out = analytics.ToPriceMarkers(prices)
	default:
		return fmt.Errorf("estated: unknown dataset %q", cmd.Dataset)
	}
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, out)
}

func (cmd *predictCmd) Run(rt *runtime) error {
	form := analytics.NewPredictionForm(analytics.PredictionFormOptions{
		Predictor: rt.client,
		Logger:    rt.logger,
	})
	outcome := form.Submit(rt.ctx, analytics.PredictionRequest{
		Bedrooms:   cmd.Bedrooms,
		Bathrooms:  cmd.Bathrooms,
		SqftLiving: cmd.SqftLiving,
		SqftLot:    cmd.SqftLot,
		Floors:     cmd.Floors,
		Waterfront: cmd.Waterfront,
		Model:      cmd.Model,
	})
	if outcome.Err != nil {
		return fmt.Errorf("%s: %w", outcome.Error, outcome.Err)
	}
	fmt.Fprintln(os.Stdout, outcome.Message)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package container

import (
	"context"
	"fmt"
	"time"

	"csvdash/adapters/excel"
	"csvdash/internal"
	"csvdash/internal/charts"
	"csvdash/internal/config"
	"csvdash/internal/dashboard"
	datasetproc "csvdash/internal/dataset"
	"csvdash/internal/session"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Ingestion
	Processor *datasetproc.Processor

	// Presentation
	Charts   *charts.Renderer
	Renderer *dashboard.Renderer
	Exporter *excel.ReportWriter

	// Session state
	Sessions session.Store
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	c.initIngestion()
	c.initPresentation()
	c.Sessions = session.NewMemoryStore(logger)

	logger.With("Container").Info("Container initialized (upload limit %d bytes, charts %dx%d)",
		cfg.Upload.MaxBytes, cfg.Charts.Width, cfg.Charts.Height)
	return c, nil
}

// initIngestion registers the CSV and workbook decoders
func (c *Container) initIngestion() {
	c.Processor = datasetproc.NewProcessor(
		&datasetproc.StorageConfig{MaxFileSize: c.Config.Upload.MaxBytes},
		c.Logger,
		datasetproc.NewCSVDecoder(),
		excel.NewWorkbookDecoder(c.Logger),
	)
}

// initPresentation builds the chart, render and export components
func (c *Container) initPresentation() {
	c.Charts = charts.NewRenderer(charts.Config{Width: c.Config.Charts.Width, Height: c.Config.Charts.Height})
	c.Renderer = dashboard.NewRenderer(c.Charts, c.Config.Upload.PreviewRows, c.Logger)
	c.Exporter = excel.NewReportWriter(c.Logger)
}

// RunBackground runs the session janitor until ctx is cancelled
func (c *Container) RunBackground(ctx context.Context) error {
	interval := c.Config.Session.JanitorInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return session.RunJanitor(ctx, c.Sessions, interval, c.Config.Session.IdleTTL)
}

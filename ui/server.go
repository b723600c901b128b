package ui

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"csvdash/adapters/excel"
	"csvdash/domain/dataset"
	"csvdash/internal"
	"csvdash/internal/charts"
	"csvdash/internal/config"
	"csvdash/internal/container"
	"csvdash/internal/dashboard"
	datasetproc "csvdash/internal/dataset"
	"csvdash/internal/session"
	"csvdash/ui/templates/fragments"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

// Server represents the web server for the dashboard
type Server struct {
	router        *gin.Engine
	templates     *template.Template
	embeddedFiles fs.FS
	logger        *internal.Logger

	config    *config.Config
	processor *datasetproc.Processor
	renderer  *dashboard.Renderer
	exporter  *excel.ReportWriter
	sessions  session.Store
	cookies   *sessions.CookieStore

	background func(context.Context) error
}

// NewServer creates a web server over the container's components. embeddedFiles
// must hold ui/templates and ui/static.
func NewServer(c *container.Container, embeddedFiles fs.FS) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	cookies := sessions.NewCookieStore([]byte(c.Config.Session.Secret))
	cookies.MaxAge(86400 * 30) // 30 days; server-side state expires separately
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode

	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}

	s := &Server{
		router:        router,
		embeddedFiles: embeddedFiles,
		logger:        c.Logger.With("Server"),
		config:        c.Config,
		processor:     c.Processor,
		renderer:      c.Renderer,
		exporter:      c.Exporter,
		sessions:      c.Sessions,
		cookies:       cookies,
		background:    c.RunBackground,
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// parseTemplates loads every template under ui/templates, named by its path
// relative to that directory
func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"svg":     svgDataURI,
		"heading": headingHTML,
		"coef":    charts.FormatCoefficient,
		"num":     formatNumber,
		"add":     func(a, b int) int { return a + b },
		"percent": func(f dataset.FrequencyTable, i int) string {
			return fmt.Sprintf("%.2f%%", f.Percent(i))
		},
	}

	templatesFS, err := fs.Sub(s.embeddedFiles, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	files1, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob root templates: %w", err)
	}
	files2, err := fs.Glob(templatesFS, "*/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob nested templates: %w", err)
	}
	files := append(files1, files2...)
	if len(files) == 0 {
		return fmt.Errorf("no templates found under ui/templates")
	}

	s.templates = template.New("").Funcs(funcMap)
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	categories := make(map[string]int)
	for _, required := range fragments.GetAllTemplatePaths() {
		if s.templates.Lookup(required) == nil {
			return fmt.Errorf("missing template %s", required)
		}
		categories[fragments.GetTemplateCategory(required)]++
	}
	s.logger.Debug("Parsed %d templates (%v): %s", len(files), categories, strings.Join(files, ", "))
	return nil
}

// setupMiddleware configures static files and the session cookie
func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(s.embeddedFiles, "ui/static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	page := s.router.Group("/", s.ensureSession())
	page.GET("/", s.handleIndex)
	page.POST("/upload", s.handleUpload)
	page.POST("/controls", s.handleControls)
	page.GET("/export.xlsx", s.handleExport)
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the HTTP server and the session janitor until ctx is cancelled,
// then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	addr := ":" + s.config.Server.Port
	s.logger.Info("Starting dashboard on http://localhost%s", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.background != nil {
		eg.Go(func() error {
			return s.background(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down dashboard...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sirpyerre/accounts-api/docs"
	"github.com/sirpyerre/accounts-api/internal/api/handler"
	"github.com/sirpyerre/accounts-api/internal/api/metrics"
	"github.com/sirpyerre/accounts-api/internal/api/middleware"
	"github.com/sirpyerre/accounts-api/internal/core/ports"
)

// Options carries everything the router needs. Mongo and Redis are used for
// the readiness probe only; either may be nil.
type Options struct {
	Service  ports.AccountService
	Logger   zerolog.Logger
	Registry *prometheus.Registry
	Mongo    *mongo.Database
	Redis    *redis.Client
	// StaticDir holds the built front-end served as a single-page app.
	StaticDir string
	// UploadDir is served under /uploads when set (disk image backend).
	UploadDir string
	// BodyLimit caps request bodies, e.g. "10M". Empty means no limit.
	BodyLimit string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomiddleware.CORS())
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	accountHandler := handler.NewAccountHandler(opts.Service, metrics.New(reg))
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(dependencyChecks(opts.Mongo, opts.Redis))

	// --- Account routes ---
	e.POST("/signup", accountHandler.Signup)
	e.POST("/login", accountHandler.Login)
	e.POST("/adduser", accountHandler.AddUser)
	e.GET("/getAllUsers", accountHandler.List)
	e.GET("/getUser/:id", accountHandler.Get)
	e.POST("/getUser/:id", accountHandler.Get)
	e.POST("/editUser/:id", accountHandler.Edit)

	// --- Health probes ---
	e.GET("/test", healthHandler.Test)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Static content ---
	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}
	registerSPA(e, opts.StaticDir, opts.Logger)

	return e
}

// registerSPA serves the built front-end. Unknown paths fall back to
// index.html so client-side routes resolve; API routes registered above win.
func registerSPA(e *echo.Echo, dir string, log zerolog.Logger) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		log.Warn().Str("dir", dir).Msg("static build not found, front-end disabled")
		return
	}

	e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
		Root:  dir,
		Index: "index.html",
		HTML5: true,
		// Wildcard routes (/uploads, /swagger) serve their own files.
		Skipper: func(c echo.Context) bool {
			m := c.Request().Method
			return (m != http.MethodGet && m != http.MethodHead) || strings.HasSuffix(c.Path(), "*")
		},
	}))
}

func dependencyChecks(db *mongo.Database, rdb *redis.Client) map[string]handler.DependencyCheck {
	checks := make(map[string]handler.DependencyCheck, 2)
	if db != nil {
		checks["mongodb"] = func(ctx context.Context) error {
			return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

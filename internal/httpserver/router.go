package httpserver

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/modern_shop/pkg/db"
	loggingmw "github.com/Skotchmaster/modern_shop/pkg/middleware/logging"
)

type Deps struct {
	DB     *db.Handle
	Logger *slog.Logger

	UserHandler    *UserHTTP
	ProductHandler *ProductHTTP
	Auth           *Auth

	CORSAllowOrigins []string
	PermissiveCORS   bool
	StaticDir        string
	TemplatesDir     string
}

// New builds the echo instance with the middleware chain and every route.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(echomw.CORSWithConfig(corsConfig(d.Logger, d.CORSAllowOrigins, d.PermissiveCORS)))
	e.Use(d.DB.Scope)

	Register(e, d)
	return e
}

func corsConfig(l *slog.Logger, origins []string, permissive bool) echomw.CORSConfig {
	cfg := echomw.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{"*"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}
	if permissive {
		l.Warn("cors_permissive", "reason", "wildcard origin with credentials is unsafe for production")
		cfg.UnsafeWildcardOriginWithAllowCredentials = true
	}
	return cfg
}

func Register(e *echo.Echo, d *Deps) {
	health := &HealthHTTP{DB: d.DB}
	e.GET("/health", health.Health)
	e.GET("/health/live", health.Live)
	e.GET("/health/ready", health.Ready)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("", d.UserHandler.CreateUser)
	users.POST("/login", d.UserHandler.Login)
	users.GET("/me", d.UserHandler.Me, d.Auth.RequireAuth)

	products := api.Group("/products")
	products.POST("", d.ProductHandler.CreateProduct)
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	for _, prefix := range []string{"/carts", "/orders"} {
		api.Any(prefix, NotImplemented)
		api.Any(prefix+"/*", NotImplemented)
	}

	registerFrontend(e, d)
}

// registerFrontend serves STATIC_DIR and the SPA fallback. Nothing is
// registered when the directory does not exist.
func registerFrontend(e *echo.Echo, d *Deps) {
	fi, err := os.Stat(d.StaticDir)
	if err != nil || !fi.IsDir() {
		d.Logger.Info("static_disabled", "dir", d.StaticDir)
		return
	}

	if r, err := NewTemplateRenderer(d.TemplatesDir); err != nil {
		d.Logger.Warn("templates_disabled", "dir", d.TemplatesDir, "error", err)
	} else {
		e.Renderer = r
	}

	spa := &SPA{StaticDir: d.StaticDir}
	e.Static("/static", d.StaticDir)
	e.GET("/*", spa.Fallback)
}

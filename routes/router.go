package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/artcopy/config"
	"github.com/cppla/artcopy/controllers"
	"github.com/cppla/artcopy/generator"
	"github.com/cppla/artcopy/middleware"
	"github.com/cppla/artcopy/services"
	"github.com/cppla/artcopy/utils"
	"github.com/cppla/artcopy/views"
)

// Deps carries everything the router needs. Cache and Generator may be nil.
type Deps struct {
	Config    *config.AppConfig
	DB        *gorm.DB
	Log       *zap.Logger
	Cache     *utils.Cache
	Generator *generator.Generator
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	switch strings.ToLower(cfg.App.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	gen := deps.Generator
	if gen == nil {
		gen = generator.New()
	}

	trusted, err := middleware.ParseTrustedProxies(cfg.App.TrustedProxies)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.App.TrustedProxies); err != nil {
		return nil, err
	}
	accessLog := log
	if cfg.App.GinLogPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.App.GinLogPath, cfg.Log.Level, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
		if err == nil {
			accessLog = gl
		} else {
			log.Warn("gin access log unavailable, using application logger", zap.Error(err))
		}
	}
	r.Use(middleware.RequestID())
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, false))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", utils.RequestIDKey},
		ExposeHeaders: []string{"Content-Length", utils.RequestIDKey},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.App.AllowedOrigins) == 0 || (len(cfg.App.AllowedOrigins) == 1 && cfg.App.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.App.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.ClientMeta(trusted))

	tmpl, err := views.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.Static("/static", cfg.App.StaticDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	flasher := utils.NewFlasher(cfg.App.SessionSecret, cfg.App.SessionSecure)
	events := services.NewEventRecorder(deps.DB, log)
	contentService := services.NewContentService(deps.DB, gen, events, deps.Cache, log)
	analyticsService := services.NewAnalyticsService(deps.DB)

	pageController := controllers.NewPageController(contentService, flasher, log)
	analyticsController := controllers.NewAnalyticsController(analyticsService, contentService, deps.Cache, cfg.StatsCacheTTL(), flasher, log)

	limited := []gin.HandlerFunc{}
	if cfg.App.RateLimitPerMinute > 0 {
		limited = append(limited, middleware.NewRateLimiter(cfg.App.RateLimitPerMinute).Middleware(flasher))
	}

	r.GET("/", pageController.Index)
	r.POST("/generate", append(limited, pageController.Generate)...)
	r.GET("/history", pageController.History)
	r.GET("/view/:id", pageController.View)
	r.GET("/analytics", analyticsController.Dashboard)

	api := r.Group("/api")
	api.POST("/track-copy", append(limited, analyticsController.TrackCopy)...)
	api.GET("/stats", analyticsController.GetStats)
	api.GET("/content/:id", pageController.ContentJSON)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.String(http.StatusNotFound, "404 page not found")
	})

	return r, nil
}

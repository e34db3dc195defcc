package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/artcopy/middleware"
	"github.com/cppla/artcopy/services"
	"github.com/cppla/artcopy/utils"
)

const statsCacheKey = services.StatsCachePrefix + "api"

// AnalyticsController serves the analytics dashboard and the JSON API.
type AnalyticsController struct {
	analytics *services.AnalyticsService
	content   *services.ContentService
	cache     *utils.Cache
	cacheTTL  time.Duration
	flasher   *utils.Flasher
	log       *zap.Logger
}

// NewAnalyticsController creates a new AnalyticsController instance.
func NewAnalyticsController(analytics *services.AnalyticsService, content *services.ContentService, cache *utils.Cache, cacheTTL time.Duration, flasher *utils.Flasher, log *zap.Logger) *AnalyticsController {
	return &AnalyticsController{
		analytics: analytics,
		content:   content,
		cache:     cache,
		cacheTTL:  cacheTTL,
		flasher:   flasher,
		log:       log,
	}
}

// Dashboard renders the analytics page.
func (a *AnalyticsController) Dashboard(ctx *gin.Context) {
	dashboard, err := a.analytics.Dashboard(ctx.Request.Context())
	if err != nil {
		a.log.Error("load analytics failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Error(err),
		)
		if ferr := a.flasher.Add(ctx, utils.FlashError, "Could not load analytics. Please try again."); ferr != nil {
			a.log.Warn("save flash failed", zap.Error(ferr))
		}
		ctx.Redirect(http.StatusFound, "/")
		return
	}
	ctx.HTML(http.StatusOK, "analytics.html", gin.H{
		"Title":     "Analytics",
		"Dashboard": dashboard,
		"Flashes":   a.flasher.Pop(ctx),
	})
}

// GetStats returns the aggregate statistics as JSON.
func (a *AnalyticsController) GetStats(ctx *gin.Context) {
	if b, ok := a.cache.GetBytes(ctx.Request.Context(), statsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	stats, err := a.analytics.Stats(ctx.Request.Context())
	if err != nil {
		a.log.Error("load stats failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Error(err),
		)
		utils.APIError(ctx, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	a.cache.SetJSON(ctx.Request.Context(), statsCacheKey, stats, a.cacheTTL)
	ctx.JSON(http.StatusOK, stats)
}

type trackCopyRequest struct {
	ContentID uint   `json:"content_id"`
	CopyType  string `json:"copy_type"`
}

// TrackCopy records a clipboard copy reported by the browser.
func (a *AnalyticsController) TrackCopy(ctx *gin.Context) {
	var req trackCopyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.APIError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := a.content.TrackCopy(ctx.Request.Context(), req.ContentID, req.CopyType, middleware.GetClientMeta(ctx)); err != nil {
		a.log.Error("track copy failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Uint("content_id", req.ContentID),
			zap.Error(err),
		)
		utils.APIError(ctx, http.StatusInternalServerError, "failed to track copy")
		return
	}
	utils.StatusSuccess(ctx)
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/artcopy/generator"
	"github.com/cppla/artcopy/middleware"
	"github.com/cppla/artcopy/services"
	"github.com/cppla/artcopy/utils"
)

// PreviewImageCount is the number of placeholder images on the results page.
const PreviewImageCount = 3

// Flash messages shown on the form page.
const (
	msgEmptyConcept    = "Please enter a creative concept to generate content."
	msgConceptTooLong  = "That concept is too long. Please keep it under 500 characters."
	msgGenerateFailed  = "An error occurred while generating content. Please try again."
	msgContentNotFound = "That content could not be found."
	msgHistoryFailed   = "Could not load history. Please try again."
	msgViewFailed      = "An error occurred while loading this content. Please try again."
)

// PageController renders the HTML pages: form, results, history and detail.
type PageController struct {
	content *services.ContentService
	flasher *utils.Flasher
	log     *zap.Logger
}

// NewPageController creates a new PageController instance.
func NewPageController(content *services.ContentService, flasher *utils.Flasher, log *zap.Logger) *PageController {
	return &PageController{content: content, flasher: flasher, log: log}
}

// Index renders the concept form.
func (p *PageController) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"Title":   "Generate",
		"Flashes": p.flasher.Pop(ctx),
	})
}

// Generate turns the submitted concept into copy and renders the results.
func (p *PageController) Generate(ctx *gin.Context) {
	concept, err := services.NormalizeConcept(ctx.PostForm("concept"))
	if err != nil {
		msg := msgEmptyConcept
		if errors.Is(err, services.ErrConceptTooLong) {
			msg = msgConceptTooLong
		}
		p.redirectWithFlash(ctx, "/", msg)
		return
	}

	content, err := p.content.Generate(ctx.Request.Context(), concept, middleware.GetClientMeta(ctx))
	if err != nil {
		p.log.Error("generate content failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Int("concept_length", len(concept)),
			zap.Error(err),
		)
		p.redirectWithFlash(ctx, "/", msgGenerateFailed)
		return
	}

	ctx.HTML(http.StatusOK, "results.html", gin.H{
		"Title":   "Results",
		"Content": content,
		"Images":  generator.PlaceholderImages(PreviewImageCount),
		"Flashes": p.flasher.Pop(ctx),
	})
}

// History lists the most recent generations.
func (p *PageController) History(ctx *gin.Context) {
	items, err := p.content.History(ctx.Request.Context(), services.HistoryLimit)
	if err != nil {
		p.log.Error("load history failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Error(err),
		)
		p.redirectWithFlash(ctx, "/", msgHistoryFailed)
		return
	}
	ctx.HTML(http.StatusOK, "history.html", gin.H{
		"Title":   "History",
		"Items":   items,
		"Flashes": p.flasher.Pop(ctx),
	})
}

// View shows one stored generation and counts the view.
func (p *PageController) View(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		p.redirectWithFlash(ctx, "/history", msgContentNotFound)
		return
	}

	content, err := p.content.TrackView(ctx.Request.Context(), uint(id), middleware.GetClientMeta(ctx))
	if errors.Is(err, services.ErrContentNotFound) {
		p.redirectWithFlash(ctx, "/history", msgContentNotFound)
		return
	}
	if err != nil {
		p.log.Error("track view failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Uint64("content_id", id),
			zap.Error(err),
		)
		p.redirectWithFlash(ctx, "/history", msgViewFailed)
		return
	}

	ctx.HTML(http.StatusOK, "view.html", gin.H{
		"Title":   content.Concept,
		"Content": content,
		"Flashes": p.flasher.Pop(ctx),
	})
}

// ContentJSON returns one stored generation as JSON without counting a view.
func (p *PageController) ContentJSON(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.APIError(ctx, http.StatusNotFound, "content not found")
		return
	}
	content, err := p.content.Get(ctx.Request.Context(), uint(id))
	if errors.Is(err, services.ErrContentNotFound) {
		utils.APIError(ctx, http.StatusNotFound, "content not found")
		return
	}
	if err != nil {
		p.log.Error("load content failed",
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Uint64("content_id", id),
			zap.Error(err),
		)
		utils.APIError(ctx, http.StatusInternalServerError, "failed to load content")
		return
	}
	ctx.JSON(http.StatusOK, content.ToDict())
}

func (p *PageController) redirectWithFlash(ctx *gin.Context, location, message string) {
	if err := p.flasher.Add(ctx, utils.FlashError, message); err != nil {
		p.log.Warn("save flash failed", zap.Error(err))
	}
	ctx.Redirect(http.StatusFound, location)
}

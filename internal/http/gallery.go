package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/sunflower/internal/gallery"
	"github.com/mrlokans/sunflower/internal/unsplash"
	"github.com/mrlokans/sunflower/internal/viewmodels"
)

// GalleryController searches photos for the gallery screen. A new search from
// the same screen supersedes the one still running.
type GalleryController struct {
	client *unsplash.Client
	runner *gallery.Runner
}

func NewGalleryController(client *unsplash.Client, runner *gallery.Runner) *GalleryController {
	if runner == nil {
		runner = gallery.NewRunner()
	}
	return &GalleryController{client: client, runner: runner}
}

// Search handles GET /api/gallery?query=&page=
func (gc *GalleryController) Search(c *gin.Context) {
	if gc.client == nil || !gc.client.HasValidAccessKey() {
		respondError(c, http.StatusServiceUnavailable, "missing_access_key", "photo search is not configured")
		return
	}

	query := c.Query("query")
	if query == "" {
		respondBadRequest(c, "query is required")
		return
	}
	pageNumber, ok := parseIntQuery(c, "page", unsplash.StartingPage)
	if !ok {
		return
	}
	if pageNumber < unsplash.StartingPage {
		respondBadRequest(c, "page must be at least 1")
		return
	}

	pager := viewmodels.NewGalleryViewModel(gc.client).SearchPictures(query)

	var page *unsplash.Page
	err := gc.runner.Run(c.Request.Context(), screenID(c), func(ctx context.Context) error {
		var err error
		page, err = pager.Page(ctx, pageNumber)
		return err
	})
	if err != nil {
		gc.respondSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": pager.Query(),
		"page":  page,
	})
}

// Cancel handles DELETE /api/gallery
// Stops the screen's running search, if any.
func (gc *GalleryController) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cancelled": gc.runner.Cancel(screenID(c))})
}

func (gc *GalleryController) respondSearchError(c *gin.Context, err error) {
	var serverErr *unsplash.ServerError
	switch {
	case errors.Is(err, gallery.ErrSuperseded):
		respondError(c, http.StatusConflict, "superseded", err.Error())
	case errors.Is(err, unsplash.ErrRateLimited):
		respondError(c, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, unsplash.ErrInvalidAccessKey), errors.Is(err, unsplash.ErrMissingAccessKey):
		respondError(c, http.StatusBadGateway, "invalid_access_key", err.Error())
	case errors.As(err, &serverErr):
		respondError(c, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "cancelled", err.Error())
	default:
		respondInternalError(c, err, "gallery search")
	}
}

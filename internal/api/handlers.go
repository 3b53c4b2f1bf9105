package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mlaakso/agrisight-go/internal/analysis"
	"github.com/mlaakso/agrisight-go/internal/classifier"
	"github.com/mlaakso/agrisight-go/internal/sampling"
)

// PostAnalyze runs the full analysis pipeline for a point or polygon.
func (c *Controller) PostAnalyze(ctx echo.Context) error {
	var req analysis.Request
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	// Mode defaults from the shape of the request.
	if req.Mode == "" {
		if len(req.Polygon) > 0 {
			req.Mode = sampling.ModePolygon
		} else {
			req.Mode = sampling.ModePoint
		}
	}
	if req.Mode != sampling.ModePoint && req.Mode != sampling.ModePolygon {
		return c.HandleError(ctx, nil, "Mode must be point or polygon", http.StatusBadRequest)
	}

	result, err := c.analyzer.Analyze(ctx.Request().Context(), req)
	if err != nil {
		return c.HandleError(ctx, err, "Analysis failed", http.StatusBadRequest)
	}

	return ctx.JSON(http.StatusOK, result)
}

// GetClasses lists the land-cover labels the model can return.
func (c *Controller) GetClasses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"classes": classifier.KnownLabels,
	})
}

// GetCrops lists the crop knowledge base.
func (c *Controller) GetCrops(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"count": len(c.knowledgeBase.Profiles),
		"crops": c.knowledgeBase.Profiles,
	})
}

package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/w-h-a/analyst"
	"github.com/w-h-a/analyst/dashboard"
	"github.com/w-h-a/analyst/generator"
	"github.com/w-h-a/analyst/news"
	"github.com/w-h-a/analyst/planner"
	"github.com/w-h-a/analyst/telemetry"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *analyst.Service, newsSvc *news.Service, dash *dashboard.Service, logger *zap.Logger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "analyst",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/analyst", func(c *fiber.Ctx) error {
		var req analystRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		query, err := req.toQuery()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := svc.Run(c.Context(), query, func(stage analyst.Stage) {
			logger.Info(stage.Status(), zap.String("stage", stage.String()))
		})
		if err != nil {
			return analystError(err)
		}

		return c.JSON(result)
	})

	v1.Get("/news", func(c *fiber.Ctx) error {
		limit := 3
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 20 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer between 1 and 20")
			}
			limit = parsed
		}

		articles, err := newsSvc.Fetch(c.Context(), limit)
		if err != nil {
			if errors.Is(err, news.ErrMissingConfig) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "news feed is not configured")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch news")
		}

		return c.JSON(fiber.Map{
			"articles": articles,
		})
	})

	v1.Get("/snapshot", func(c *fiber.Ctx) error {
		if snapshot, ok := dash.Latest(); ok {
			return c.JSON(snapshot)
		}

		snapshot, err := dash.Refresh(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch live snapshot")
		}

		return c.JSON(snapshot)
	})
}

// analystRequest is the POST body for a pipeline run.
type analystRequest struct {
	Text        string   `json:"text"`
	Provider    string   `json:"provider"`
	Latitude    *float64 `json:"lat"`
	Longitude   *float64 `json:"lon"`
	LiveSummary string   `json:"liveSummary"`
}

func (r analystRequest) toQuery() (analyst.Query, error) {
	provider, err := generator.ParseProvider(r.Provider)
	if err != nil {
		return analyst.Query{}, err
	}

	query := analyst.Query{
		Text:        r.Text,
		Provider:    provider,
		LiveSummary: r.LiveSummary,
	}

	if r.Latitude != nil && r.Longitude != nil {
		query.Coords = &planner.Coords{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
		}
	}

	return query, nil
}

// analystError maps pipeline failures onto status codes. Configuration and
// plan problems are the caller's to fix; upstream data failures are gateways.
func analystError(err error) error {
	switch {
	case errors.Is(err, generator.ErrMissingConfig):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, planner.ErrPlanParse):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, telemetry.ErrDataUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	var stageErr *analyst.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case analyst.StagePlanning:
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case analyst.StageFetching:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		case analyst.StageGenerating:
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
	}

	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

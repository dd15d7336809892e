package search

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type searchResponse struct {
	Ok    bool        `json:"ok"`
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

type errorResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

func intQueryParam(c echo.Context, fallback int, names ...string) int {
	for _, name := range names {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		return n
	}
	return fallback
}

// RegisterRoutes mounts the marketplace query interface.
// GET /api/search?ceiling=1100&limit=15 ("maxStars" accepted as a legacy
// alias for ceiling).
func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/search", s.handleSearch)
	e.GET("/healthz", handleHealthz)
}

func (s *Service) handleSearch(c echo.Context) error {
	ceiling := intQueryParam(c, 1100, "ceiling", "maxStars")
	limit := intQueryParam(c, MaxLimit, "limit")

	items, err := s.Select(c.Request().Context(), SelectionRequest{
		MaxStars: ceiling,
		Limit:    limit,
	})
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "search failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Ok:    false,
			Error: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, searchResponse{
		Ok:    true,
		Count: len(items),
		Items: items,
	})
}

func handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

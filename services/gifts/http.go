package gifts

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type giftsResponse struct {
	Ok    bool        `json:"ok"`
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

type errorResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

// RegisterRoutes mounts the chat-bot-origin query interface.
// GET /api/gifts?sellers=alice,bob&ceiling=1100 ("maxStars" accepted as a
// legacy alias for ceiling). Without a sellers parameter the upstream
// bot's own listing is scanned; an empty sellers parameter yields an
// empty result without touching the upstream.
func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/gifts", s.handleGifts)
	e.GET("/healthz", handleHealthz)
}

func (s *Service) handleGifts(c echo.Context) error {
	ceiling := 0
	for _, name := range []string{"ceiling", "maxStars"} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err == nil {
			ceiling = n
			break
		}
	}

	var sellers []string
	if c.QueryParams().Has("sellers") {
		sellers = []string{}
		for _, s := range strings.Split(c.QueryParam("sellers"), ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				sellers = append(sellers, s)
			}
		}
	}

	items, err := s.Select(c.Request().Context(), SelectionRequest{
		Sellers:  sellers,
		MaxStars: ceiling,
	})
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "gift scan failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Ok:    false,
			Error: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, giftsResponse{
		Ok:    true,
		Count: len(items),
		Items: items,
	})
}

func handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

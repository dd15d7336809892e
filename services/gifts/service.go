package gifts

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"giftscout-backend/lib/scrapers/pricebot"
	"giftscout-backend/lib/searchlog"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/gifts")

// MaxLimit is the hard ceiling on result size regardless of what the
// caller asked for.
const MaxLimit = 15

type Service struct {
	provider *pricebot.Provider
	log      searchlog.Store
}

func NewService(provider *pricebot.Provider, log searchlog.Store) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("a pricebot provider is required")
	}
	return &Service{provider: provider, log: log}, nil
}

type SelectionRequest struct {
	// nil scans the upstream bot's own listing; a non-nil empty slice
	// short-circuits to an empty result without any upstream round trip
	Sellers []string
	// <= 0 means no ceiling
	MaxStars int
	// clamped to 1..MaxLimit, 0 means MaxLimit
	Limit int
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Select gathers listings from the upstream bot, keeps those within the
// ceiling, dedupes by (name, price) and returns them sorted ascending
// by price, at most min(limit, MaxLimit) of them.
func (s *Service) Select(ctx context.Context, req SelectionRequest) ([]pricebot.Gift, error) {
	ctx, span := tracer.Start(ctx, "service:Select")
	defer span.End()

	started := time.Now()
	limit := clampLimit(req.Limit)

	var gathered []pricebot.Gift
	var err error
	switch {
	case req.Sellers == nil:
		gathered, err = s.provider.FetchGifts(ctx)
	case len(req.Sellers) == 0:
		gathered = nil
	default:
		gathered, err = s.provider.ScanSellers(ctx, pricebot.ScanRequest{
			Sellers:  req.Sellers,
			MaxStars: req.MaxStars,
			MaxItems: limit,
		})
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	results := []pricebot.Gift{}
	for _, gift := range gathered {
		if gift.PriceStars <= 0 {
			continue
		}
		if req.MaxStars > 0 && gift.PriceStars > req.MaxStars {
			continue
		}
		key := fmt.Sprintf("%s|%d", gift.Name, gift.PriceStars)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, gift)
	}

	// stable keeps first-seen order among equally priced listings
	slices.SortStableFunc(results, func(a, b pricebot.Gift) int {
		return a.PriceStars - b.PriceStars
	})
	if len(results) > limit {
		results = results[:limit]
	}

	logErr := s.log.Append(ctx, searchlog.Entry{
		Time:        started,
		Origin:      "pricebot",
		Ceiling:     req.MaxStars,
		ResultCount: len(results),
		Duration:    time.Since(started),
	})
	if logErr != nil {
		slog.ErrorContext(ctx, "failed to append search log entry", "err", logErr)
	}

	return results, nil
}

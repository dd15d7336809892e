package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"giftscout-backend/lib/scrapers/peek"
	"giftscout-backend/lib/searchlog"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("services/search")

// MaxLimit is the hard ceiling on result size regardless of what the
// caller asked for.
const MaxLimit = 15

const (
	DefaultConcurrency = 4
	DefaultDeadline    = 90 * time.Second
)

// ErrDeadline distinguishes a selection cut short by its overall
// deadline from an honestly empty result.
var ErrDeadline = errors.New("search deadline exceeded")

type Service struct {
	client      *peek.Client
	log         searchlog.Store
	concurrency int
	deadline    time.Duration
}

type ServiceOptions struct {
	Client *peek.Client
	Log    searchlog.Store
	// width of the confirmation worker pool, defaults to DefaultConcurrency
	Concurrency int
	// overall budget for one Select call, defaults to DefaultDeadline
	Deadline time.Duration
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("a marketplace client is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	return &Service{
		client:      opts.Client,
		log:         opts.Log,
		concurrency: opts.Concurrency,
		deadline:    opts.Deadline,
	}, nil
}

type SelectionRequest struct {
	MaxStars int
	// clamped to 1..MaxLimit, 0 means MaxLimit
	Limit    int
	PageFrom int
	PageTo   int
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Select discovers candidates, confirms each one is actually purchasable
// with bounded concurrency, then dedupes by detail URL preserving
// discovery order. An empty result is a valid outcome, not an error.
func (s *Service) Select(ctx context.Context, req SelectionRequest) ([]peek.Candidate, error) {
	ctx, span := tracer.Start(ctx, "service:Select")
	defer span.End()

	started := time.Now()
	limit := clampLimit(req.Limit)

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	raw, err := s.client.ScrapeListings(ctx, peek.ScrapeRequest{
		MaxStars: req.MaxStars,
		Limit:    limit,
		PageFrom: req.PageFrom,
		PageTo:   req.PageTo,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrDeadline
		}
		return nil, err
	}

	confirmed := make([]bool, len(raw))
	group := errgroup.Group{}
	group.SetLimit(s.concurrency)
	for i, candidate := range raw {
		i, candidate := i, candidate
		group.Go(func() error {
			confirmed[i] = s.client.IsBuyable(ctx, candidate.URL)
			return nil
		})
	}
	group.Wait()

	if ctx.Err() != nil {
		return nil, ErrDeadline
	}

	seen := map[string]bool{}
	results := []peek.Candidate{}
	for i, candidate := range raw {
		if !confirmed[i] || seen[candidate.URL] {
			continue
		}
		seen[candidate.URL] = true
		results = append(results, candidate)
		if len(results) >= limit {
			break
		}
	}

	err = s.log.Append(ctx, searchlog.Entry{
		Time:        started,
		Origin:      "marketplace",
		Ceiling:     req.MaxStars,
		ResultCount: len(results),
		Duration:    time.Since(started),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to append search log entry", "err", err)
	}

	return results, nil
}

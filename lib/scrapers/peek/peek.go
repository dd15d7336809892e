package peek

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"giftscout-backend/lib/telemetry"
	"giftscout-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/peek")

const DefaultBaseUrl = "https://peek.tg"

// DefaultBuyablePhrases is the observed wording of the marketplace's
// "buy with stars" button. Every phrase in a group must be present
// (after normalization) for the group to match. Treated as configuration
// because the upstream wording is not contractually stable.
var DefaultBuyablePhrases = [][]string{
	{"купить за зв"},
	{"buy for", "star"},
	{"купить", "⭐"},
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	limiter        *rate.Limiter
	buyablePhrases [][]string
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl   string
	UserAgent string
	// defaults to 20 seconds
	Timeout time.Duration
	// outbound request budget, <= 0 means unlimited
	RequestsPerSecond float64
	// defaults to DefaultBuyablePhrases
	BuyablePhrases [][]string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 20
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/peek/http")

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	phrases := opts.BuyablePhrases
	if len(phrases) == 0 {
		phrases = DefaultBuyablePhrases
	}
	normalized := make([][]string, len(phrases))
	for i, group := range phrases {
		normalized[i] = make([]string, len(group))
		for j, phrase := range group {
			normalized[i][j] = textutil.NormalizeName(phrase)
		}
	}

	return &Client{
		BaseUrl:        baseUrl,
		Http:           client,
		limiter:        rate.NewLimiter(limit, 1),
		buyablePhrases: normalized,
	}, nil
}

func (c *Client) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

// Candidate is a parsed, not yet confirmed, marketplace listing.
type Candidate struct {
	Seller     string `json:"username"`
	PriceStars int    `json:"priceStars"`
	URL        string `json:"giftUrl"`
}

type ScrapeRequest struct {
	MaxStars int
	Limit    int
	// 1-based inclusive page range, defaults to 1..5
	PageFrom int
	PageTo   int
}

// catalog routes tried in priority order, the last two are fallback searches
var listPathTemplates = []string{
	"/market/gifts?page=%d",
	"/gifts?page=%d",
	"/search?type=gifts&page=%d",
	"/search?q=gift&page=%d",
	"/search?q=%%D0%%BF%%D0%%BE%%D0%%B4%%D0%%B0%%D1%%80%%D0%%BE%%D0%%BA&page=%d",
}

// ScrapeListings walks the catalog routes page by page and accumulates
// candidates priced within request.MaxStars until request.Limit is reached
// or every route is exhausted. A fetch failure on one page skips that page
// only. Returns the context error when the deadline cuts the walk short.
func (c *Client) ScrapeListings(ctx context.Context, req ScrapeRequest) ([]Candidate, error) {
	ctx, span := tracer.Start(ctx, "client:ScrapeListings")
	defer span.End()

	if req.PageFrom <= 0 {
		req.PageFrom = 1
	}
	if req.PageTo < req.PageFrom {
		req.PageTo = req.PageFrom + 4
	}

	var results []Candidate
	for _, template := range listPathTemplates {
		for page := req.PageFrom; page <= req.PageTo && len(results) < req.Limit; page++ {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}

			link := fmt.Sprintf(template, page)
			doc, err := c.fetchDocument(ctx, link)
			if err != nil {
				slog.DebugContext(ctx, "skipping listing page", "link", link, "err", err)
				continue
			}

			cards := doc.Find(`[data-card="gift"], .gift-card, .market-card, .card`)
			if cards.Length() == 0 {
				anchors := doc.Find(`a[href*="/gift/"]`)
				if anchors.Length() == 0 {
					anchors = doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
						return strings.Contains(strings.ToLower(a.Text()), "gift")
					})
				}
				cards = anchors.Closest("div")
			}

			cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
				if len(results) >= req.Limit {
					return false
				}
				candidate, ok := ExtractCard(c.BaseUrl, card)
				if !ok {
					return true
				}
				if candidate.PriceStars <= req.MaxStars {
					results = append(results, candidate)
				}
				return true
			})
		}
		if len(results) >= req.Limit {
			break
		}
	}

	return results, nil
}

package peek

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"giftscout-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<div class="gift-card"><a href="/gift/1">gift</a><div class="price">900⭐</div><span class="username">alice</span></div>
<div class="gift-card"><a href="/gift/2">gift</a><div class="price">1 100⭐</div><span class="username">bob</span></div>
<div class="gift-card"><a href="/gift/3">gift</a><div class="price">1500⭐</div><span class="username">carol</span></div>
<div class="gift-card"><a href="/gift/4">gift</a><div class="price">N/A</div><span class="username">dave</span></div>
</body></html>`

func newFakeMarketplace(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/market/gifts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, listingPage)
	})
	mux.HandleFunc("/gift/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><button>Buy for 900 Stars</button></body></html>`)
	})
	mux.HandleFunc("/gift/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="#">Купить за звёзды</a></body></html>`)
	})
	mux.HandleFunc("/gift/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><button>Sold out</button></body></html>`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	t.Cleanup(telemetry.SetupForTesting(t, "test:scrapers/peek"))

	client, err := NewClient(ClientOptions{BaseUrl: baseUrl})
	require.NoError(t, err)
	return client
}

func TestScrapeListings(t *testing.T) {
	ts := newFakeMarketplace(t)
	client := newTestClient(t, ts.URL)

	results, err := client.ScrapeListings(context.Background(), ScrapeRequest{
		MaxStars: 1100,
		Limit:    15,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// discovery order preserved, overpriced and unparseable cards dropped
	require.Equal(t, "alice", results[0].Seller)
	require.Equal(t, 900, results[0].PriceStars)
	require.Equal(t, ts.URL+"/gift/1", results[0].URL)
	require.Equal(t, "bob", results[1].Seller)
	require.Equal(t, 1100, results[1].PriceStars)
}

func TestScrapeListingsLimit(t *testing.T) {
	ts := newFakeMarketplace(t)
	client := newTestClient(t, ts.URL)

	results, err := client.ScrapeListings(context.Background(), ScrapeRequest{
		MaxStars: 2000,
		Limit:    1,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 900, results[0].PriceStars)
}

func TestScrapeListingsCancelled(t *testing.T) {
	ts := newFakeMarketplace(t)
	client := newTestClient(t, ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ScrapeListings(ctx, ScrapeRequest{MaxStars: 1100, Limit: 15})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScrapeListingsAnchorTextFallback(t *testing.T) {
	// no recognizable card classes and no /gift/ hrefs: discovery has to
	// fall back to anchors whose text mentions a gift
	page := `<html><body>
<div><a href="/item/1">Nice gift</a><span class="price">800⭐</span><span class="username">erin</span></div>
</body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/market/gifts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	client := newTestClient(t, ts.URL)
	results, err := client.ScrapeListings(context.Background(), ScrapeRequest{
		MaxStars: 1100,
		Limit:    15,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "erin", results[0].Seller)
	require.Equal(t, 800, results[0].PriceStars)
	require.Equal(t, ts.URL+"/item/1", results[0].URL)
}

func TestIsBuyable(t *testing.T) {
	ts := newFakeMarketplace(t)
	client := newTestClient(t, ts.URL)
	ctx := context.Background()

	require.True(t, client.IsBuyable(ctx, ts.URL+"/gift/1"))
	require.True(t, client.IsBuyable(ctx, ts.URL+"/gift/2"))
	require.False(t, client.IsBuyable(ctx, ts.URL+"/gift/3"))
}

func TestIsBuyableFailClosed(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	require.False(t, client.IsBuyable(context.Background(), "http://127.0.0.1:1/gift/1"))
}

package peek

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func cardFromHtml(t *testing.T, html string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	sel := doc.Find("div.card").First()
	require.Equal(t, 1, sel.Length())
	return sel
}

func testBase(t *testing.T) *url.URL {
	base, err := url.Parse("https://peek.tg")
	require.NoError(t, err)
	return base
}

func TestExtractCard(t *testing.T) {
	base := testBase(t)

	cases := []struct {
		name     string
		html     string
		expected Candidate
		ok       bool
	}{
		{
			name: "gift link wins over other anchors",
			html: `<div class="card">
				<a href="/u/alice">alice</a>
				<a href="/gift/123">a gift</a>
				<span class="price">900⭐</span>
				<span class="username">alice</span>
			</div>`,
			expected: Candidate{Seller: "alice", PriceStars: 900, URL: "https://peek.tg/gift/123"},
			ok:       true,
		},
		{
			name: "anchor text keyword fallback",
			html: `<div class="card">
				<a href="/item/5">Nice gift here</a>
				<span class="price">1 100⭐</span>
				<span class="seller">bob</span>
			</div>`,
			expected: Candidate{Seller: "bob", PriceStars: 1100, URL: "https://peek.tg/item/5"},
			ok:       true,
		},
		{
			name: "any anchor as last resort",
			html: `<div class="card">
				<a href="https://peek.tg/x/9">something</a>
				<span class="title">Plush Pepe</span> 2,125⭐
			</div>`,
			expected: Candidate{Seller: "Plush Pepe", PriceStars: 2125, URL: "https://peek.tg/x/9"},
			ok:       true,
		},
		{
			name: "price from whole card text when regions missing",
			html: `<div class="card">
				<a href="/gift/7">gift</a>
				price: 500 stars
			</div>`,
			expected: Candidate{Seller: "Gift", PriceStars: 500, URL: "https://peek.tg/gift/7"},
			ok:       true,
		},
		{
			name: "seller from profile link path segment",
			html: `<div class="card">
				<a href="/gift/8">gift</a>
				<a href="/u/carol"></a>
				<span class="price">700⭐</span>
			</div>`,
			expected: Candidate{Seller: "carol", PriceStars: 700, URL: "https://peek.tg/gift/8"},
			ok:       true,
		},
		{
			name: "no link discards the card",
			html: `<div class="card"><span class="price">900⭐</span></div>`,
			ok:   false,
		},
		{
			name: "unparseable price discards the card",
			html: `<div class="card"><a href="/gift/9">gift</a><span class="price">N/A</span></div>`,
			ok:   false,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			candidate, ok := ExtractCard(base, cardFromHtml(t, test.html))
			require.Equal(t, test.ok, ok)
			if test.ok {
				diff := cmp.Diff(test.expected, candidate)
				require.Empty(t, diff)
			}
		})
	}
}

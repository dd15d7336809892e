package peek

import (
	"net/url"
	"strings"

	"giftscout-backend/lib/htmlutil"
	"giftscout-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// The upstream markup has no stable contract, so every field is located
// through an ordered list of heuristics tried left to right, first
// success wins.

var linkHeuristics = []func(*goquery.Selection) string{
	func(card *goquery.Selection) string {
		return card.Find(`a[href*="/gift/"]`).First().AttrOr("href", "")
	},
	func(card *goquery.Selection) string {
		href := ""
		card.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(a.Text()), "gift") {
				href = a.AttrOr("href", "")
				return false
			}
			return true
		})
		return href
	},
	func(card *goquery.Selection) string {
		return card.Find("a").First().AttrOr("href", "")
	},
}

var priceRegions = []string{".price", ".gift-price", ".market-price", ".price-stars"}

var nameRegions = []string{".username", ".seller", ".name", ".title"}

func extractLink(base *url.URL, card *goquery.Selection) string {
	for _, heuristic := range linkHeuristics {
		href := heuristic(card)
		if href != "" {
			return htmlutil.ResolveHref(base, href)
		}
	}
	return ""
}

func extractPrice(card *goquery.Selection) (int, bool) {
	for _, region := range priceRegions {
		text := card.Find(region).Text()
		if text == "" {
			continue
		}
		if price, ok := textutil.ParseStars(text); ok && price > 0 {
			return price, true
		}
	}
	price, ok := textutil.ParseStars(card.Text())
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

func extractSeller(card *goquery.Selection) string {
	for _, region := range nameRegions {
		name := htmlutil.CleanText(card.Find(region).Text())
		if name != "" {
			return name
		}
	}

	profile := card.Find(`a[href^="/u/"]`).First()
	if name := htmlutil.CleanText(profile.Text()); name != "" {
		return name
	}
	href := profile.AttrOr("href", "")
	if href != "" {
		segments := strings.Split(strings.TrimSuffix(href, "/"), "/")
		return segments[len(segments)-1]
	}
	return ""
}

// ExtractCard turns one listing card into a candidate. Returns false when
// no link or no positive price could be located.
func ExtractCard(base *url.URL, card *goquery.Selection) (Candidate, bool) {
	link := extractLink(base, card)
	if link == "" {
		return Candidate{}, false
	}

	price, ok := extractPrice(card)
	if !ok {
		return Candidate{}, false
	}

	seller := extractSeller(card)
	if seller == "" {
		seller = "Gift"
	}

	return Candidate{
		Seller:     seller,
		PriceStars: price,
		URL:        link,
	}, true
}

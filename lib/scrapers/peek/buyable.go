package peek

import (
	"context"

	"giftscout-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// IsBuyable fetches the listing's detail page and reports whether any
// interactive element carries the "buy with stars" wording. Fail-closed:
// any fetch or parse failure excludes the listing.
func (c *Client) IsBuyable(ctx context.Context, link string) bool {
	ctx, span := tracer.Start(ctx, "client:IsBuyable")
	defer span.End()

	doc, err := c.fetchDocument(ctx, link)
	if err != nil {
		return false
	}

	buyable := false
	doc.Find("a,button").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := el.Text()
		for _, group := range c.buyablePhrases {
			if textutil.MatchAll(text, group) {
				buyable = true
				return false
			}
		}
		return true
	})
	return buyable
}

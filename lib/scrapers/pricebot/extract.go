package pricebot

import (
	"regexp"

	"giftscout-backend/lib/textutil"
)

// The upstream bot renders prices either on a "buy" inline button or
// inline in the message text. A button is stronger evidence the listing
// is actually on sale, so it short-circuits text extraction.

var (
	starPrefixedPrice = regexp.MustCompile(`⭐\s*([\d\s\x{00a0}\x{202f}.,]+)\+?`)
	starSuffixedPrice = regexp.MustCompile(`([\d\s\x{00a0}\x{202f}.,]+)\s*⭐\+?`)
)

// GiftName is the display name for a listing message.
func GiftName(text string) string {
	return textutil.ParseGiftName(text)
}

// ExtractButtonPrice scans the message's inline buttons for a
// star-prefixed price label.
func ExtractButtonPrice(msg Message) (int, bool) {
	for _, row := range msg.Buttons {
		for _, label := range row {
			groups := starPrefixedPrice.FindStringSubmatch(label)
			if groups == nil {
				continue
			}
			price, ok := textutil.ParseStars(groups[1])
			if ok && price > 0 {
				return price, true
			}
		}
	}
	return 0, false
}

// ExtractTextPrice matches an explicit star price in the message text.
func ExtractTextPrice(text string) (int, bool) {
	groups := starPrefixedPrice.FindStringSubmatch(text)
	if groups == nil {
		groups = starSuffixedPrice.FindStringSubmatch(text)
	}
	if groups == nil {
		return 0, false
	}
	price, ok := textutil.ParseStars(groups[1])
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

// ExtractGift turns one upstream message into a gift listing, button
// evidence first, text mention as fallback.
func ExtractGift(msg Message) (Gift, bool) {
	price, ok := ExtractButtonPrice(msg)
	if !ok {
		price, ok = ExtractTextPrice(msg.Text)
	}
	if !ok {
		return Gift{}, false
	}

	return Gift{
		Name:       GiftName(msg.Text),
		PriceStars: price,
	}, true
}

package pricebot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractButtonPrice(t *testing.T) {
	cases := []struct {
		name     string
		msg      Message
		expected int
		ok       bool
	}{
		{
			name:     "grouped digits in button label",
			msg:      Message{Buttons: [][]string{{"⭐ 2 125 Buy"}}},
			expected: 2125,
			ok:       true,
		},
		{
			name:     "comma grouping",
			msg:      Message{Buttons: [][]string{{"Купить за ⭐ 1,223"}}},
			expected: 1223,
			ok:       true,
		},
		{
			name:     "second row second button",
			msg:      Message{Buttons: [][]string{{"Details"}, {"Share", "⭐900"}}},
			expected: 900,
			ok:       true,
		},
		{
			name: "no star label",
			msg:  Message{Buttons: [][]string{{"Buy now", "Details"}}},
			ok:   false,
		},
		{
			name: "no buttons",
			msg:  Message{Text: "⭐ 500"},
			ok:   false,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			price, ok := ExtractButtonPrice(test.msg)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.expected, price)
		})
	}
}

func TestExtractTextPrice(t *testing.T) {
	cases := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"Plush Pepe ⭐ 13 825+", 13825, true},
		{"Star Ring 900 ⭐", 900, true},
		{"Cake ⭐1.100", 1100, true},
		{"no price mentioned", 0, false},
		{"", 0, false},
	}

	for _, test := range cases {
		price, ok := ExtractTextPrice(test.input)
		require.Equal(t, test.ok, ok, test.input)
		require.Equal(t, test.expected, price, test.input)
	}
}

func TestExtractGiftButtonPriority(t *testing.T) {
	// the in-text number must lose to the button label
	gift, ok := ExtractGift(Message{
		Text:    "Plush Pepe ⭐ 9 999\nsome description",
		Buttons: [][]string{{"⭐ 2 125 Buy"}},
	})
	require.True(t, ok)
	require.Equal(t, 2125, gift.PriceStars)
	require.Equal(t, "Plush Pepe", gift.Name)
}

func TestExtractGiftTextFallback(t *testing.T) {
	gift, ok := ExtractGift(Message{Text: "Delicious Cake ⭐ 900"})
	require.True(t, ok)
	require.Equal(t, 900, gift.PriceStars)
	require.Equal(t, "Delicious Cake", gift.Name)

	_, ok = ExtractGift(Message{Text: "just chatter"})
	require.False(t, ok)
}

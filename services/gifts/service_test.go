package gifts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"giftscout-backend/lib/scrapers/pricebot"
	"giftscout-backend/lib/searchlog"
	"giftscout-backend/lib/telemetry"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sent    int
	history []pricebot.Message
}

func (s *fakeSession) SendMessage(ctx context.Context, peer string, text string) error {
	s.sent++
	return nil
}

func (s *fakeSession) History(ctx context.Context, peer string, limit int) ([]pricebot.Message, error) {
	return s.history, nil
}

func newTestService(t *testing.T, session pricebot.Session) *Service {
	t.Cleanup(telemetry.SetupForTesting(t, "test:services/gifts"))

	provider, err := pricebot.NewProvider(pricebot.Options{
		Session:     session,
		SettleDelay: time.Millisecond,
	})
	require.NoError(t, err)

	service, err := NewService(provider, searchlog.Store{})
	require.NoError(t, err)
	return service
}

func TestSelectSortedAscending(t *testing.T) {
	session := &fakeSession{
		history: []pricebot.Message{
			{Text: "Plush Pepe", Buttons: [][]string{{"⭐ 2 125 Buy"}}},
			{Text: "Star Ring", Buttons: [][]string{{"⭐ 300 Buy"}}},
			{Text: "Cake", Buttons: [][]string{{"⭐ 900 Buy"}}},
			{Text: "Cake", Buttons: [][]string{{"⭐ 900 Buy"}}},
		},
	}
	service := newTestService(t, session)

	results, err := service.Select(context.Background(), SelectionRequest{MaxStars: 3000})
	require.NoError(t, err)

	require.Len(t, results, 3)
	require.Equal(t, 300, results[0].PriceStars)
	require.Equal(t, 900, results[1].PriceStars)
	require.Equal(t, 2125, results[2].PriceStars)
}

func TestSelectCeilingAndLimit(t *testing.T) {
	var history []pricebot.Message
	labels := []string{"⭐ 100", "⭐ 200", "⭐ 300", "⭐ 400", "⭐ 5000"}
	names := []string{"A", "B", "C", "D", "E"}
	for i, l := range labels {
		history = append(history, pricebot.Message{
			Text:    names[i],
			Buttons: [][]string{{l}},
		})
	}
	service := newTestService(t, &fakeSession{history: history})

	results, err := service.Select(context.Background(), SelectionRequest{
		MaxStars: 400,
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 100, results[0].PriceStars)
	require.Equal(t, 200, results[1].PriceStars)
}

func TestSelectEmptySellersSkipsUpstream(t *testing.T) {
	session := &fakeSession{
		history: []pricebot.Message{
			{Text: "Cake", Buttons: [][]string{{"⭐ 900"}}},
		},
	}
	service := newTestService(t, session)

	results, err := service.Select(context.Background(), SelectionRequest{
		Sellers:  []string{},
		MaxStars: 1100,
	})
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, session.sent)
}

func TestHandleGiftsEmptySellers(t *testing.T) {
	session := &fakeSession{}
	service := newTestService(t, session)

	e := echo.New()
	service.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/gifts?sellers=&ceiling=1100", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, session.sent)

	var body struct {
		Ok    bool              `json:"ok"`
		Count int               `json:"count"`
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Ok)
	require.Zero(t, body.Count)
	require.NotNil(t, body.Items)
	require.Empty(t, body.Items)
}

func TestHandleGifts(t *testing.T) {
	session := &fakeSession{
		history: []pricebot.Message{
			{Text: "Star Ring", Buttons: [][]string{{"⭐ 700 Buy"}}},
		},
	}
	service := newTestService(t, session)

	e := echo.New()
	service.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/gifts?sellers=alice&ceiling=1100", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ok    bool            `json:"ok"`
		Count int             `json:"count"`
		Items []pricebot.Gift `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Ok)
	require.Equal(t, 1, body.Count)
	require.Len(t, body.Items, 1)
	require.Equal(t, "Star Ring", body.Items[0].Name)
	require.Equal(t, 700, body.Items[0].PriceStars)
	require.Equal(t, "alice", body.Items[0].Seller)
}

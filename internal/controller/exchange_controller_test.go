package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"stock-ticker-be/internal/dto"
	"stock-ticker-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExchangeService struct {
	stocks    []dto.StockResponse
	gotName   string
	gotStocks *dto.ExchangeStocksRequest
}

func (f *fakeExchangeService) List(ctx context.Context, req *dto.ExchangeListRequest) ([]dto.ExchangeResponse, error) {
	return []dto.ExchangeResponse{}, nil
}

func (f *fakeExchangeService) Get(ctx context.Context, shortName string) (*dto.ExchangeResponse, error) {
	f.gotName = shortName
	return nil, nil
}

func (f *fakeExchangeService) Stocks(ctx context.Context, shortName string, req *dto.ExchangeStocksRequest) ([]dto.StockResponse, error) {
	f.gotName = shortName
	f.gotStocks = req
	return f.stocks, nil
}

type stocksEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    []dto.StockResponse `json:"data"`
}

func getStocks(t *testing.T, app *fiber.App, target string) (int, stocksEnvelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body stocksEnvelope
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func newExchangeApp(svc *fakeExchangeService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(nil))
	NewExchangeController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func TestExchangeController_Stocks(t *testing.T) {
	svc := &fakeExchangeService{stocks: []dto.StockResponse{{Symbol: "0700.HK"}, {Symbol: "9988.HK"}}}
	app := newExchangeApp(svc)

	status, body := getStocks(t, app, "/api/exchanges/HKSE/stocks?limit=2")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "0700.HK", body.Data[0].Symbol)
	assert.Equal(t, "HKSE", svc.gotName)
	assert.Equal(t, 2, svc.gotStocks.Limit)
}

func TestExchangeController_StocksUnknownExchange(t *testing.T) {
	app := newExchangeApp(&fakeExchangeService{})

	status, body := getStocks(t, app, "/api/exchanges/LSE/stocks")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, body.Success)
}

func TestExchangeController_StocksRejectsBadLimit(t *testing.T) {
	svc := &fakeExchangeService{}
	app := newExchangeApp(svc)

	status, _ := getStocks(t, app, "/api/exchanges/HKSE/stocks?limit=9999")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Nil(t, svc.gotStocks)
}

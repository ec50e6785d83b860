package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/w-h-a/analyst"
	"github.com/w-h-a/analyst/dashboard"
	"github.com/w-h-a/analyst/generator"
	"github.com/w-h-a/analyst/news"
	"github.com/w-h-a/analyst/telemetry"
	"github.com/w-h-a/analyst/telemetry/providers"
)

type scriptedGenerator struct {
	responses []string
	err       error
	calls     int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	i := g.calls
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if i >= len(g.responses) {
		i = len(g.responses) - 1
	}
	return g.responses[i], nil
}

type fakeWeather struct {
	weather providers.SurfaceWeather
	err     error
}

func (w *fakeWeather) FetchHourly(ctx context.Context, lat, lon float64, startDate, endDate string) (providers.SurfaceWeather, error) {
	if w.err != nil {
		return providers.SurfaceWeather{}, w.err
	}
	return w.weather, nil
}

type fakeSolar struct {
	solar telemetry.Series
	err   error
}

func (s *fakeSolar) FetchSolar(ctx context.Context, lat, lon float64, start, end string) (telemetry.Series, error) {
	if s.err != nil {
		return telemetry.Series{}, s.err
	}
	return s.solar, nil
}

const lisbonPlan = `[{"location":"Lisbon","lat":38.72,"lon":-9.14,"start_date":"2025-08-25","end_date":"2025-09-01","notes":""}]`

func testWeather(t *testing.T) providers.SurfaceWeather {
	t.Helper()
	times := []string{"2025-09-01T00:00", "2025-09-01T01:00"}

	temperature, err := telemetry.NormalizeHourly(times, []float64{20, 22}, "°C", "UTC")
	require.NoError(t, err)
	humidity, err := telemetry.NormalizeHourly(times, []float64{60, 58}, "%", "UTC")
	require.NoError(t, err)
	wind, err := telemetry.NormalizeHourly(times, []float64{10, 12}, "km/h", "UTC")
	require.NoError(t, err)

	return providers.SurfaceWeather{Temperature: temperature, Humidity: humidity, Wind: wind}
}

func testSolar(t *testing.T) telemetry.Series {
	t.Helper()
	solar, err := telemetry.NormalizeDaily(map[string]float64{"20250901": 5.0}, "kWh/m²")
	require.NoError(t, err)
	return solar
}

func newTestApp(t *testing.T, svc *analyst.Service, newsSvc *news.Service, dash *dashboard.Service) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	if svc == nil {
		svc = analyst.New()
	}
	if newsSvc == nil {
		newsSvc = news.New()
	}
	if dash == nil {
		dash = dashboard.New()
	}

	RegisterRoutes(app, svc, newsSvc, dash, zap.NewNop())
	return app
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalystRun(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{lisbonPlan, "A fine week."}}

	svc := analyst.New(
		analyst.WithGenerator(generator.ProviderAzureOpenAI, gen),
		analyst.WithWeather(&fakeWeather{weather: testWeather(t)}),
		analyst.WithSolar(&fakeSolar{solar: testSolar(t)}),
	)

	app := newTestApp(t, svc, nil, nil)

	body := strings.NewReader(`{"text": "How was Lisbon last week?", "provider": "azure-openai"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result analyst.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "A fine week.", result.Message)
	assert.Equal(t, generator.ProviderAzureOpenAI, result.Provider)
	require.Len(t, result.Plans, 1)
	assert.Equal(t, "Lisbon", result.Plans[0].Location)
}

func TestAnalystDefaultsProvider(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{lisbonPlan, "answer"}}

	svc := analyst.New(
		analyst.WithGenerator(generator.ProviderAzureOpenAI, gen),
		analyst.WithWeather(&fakeWeather{weather: testWeather(t)}),
		analyst.WithSolar(&fakeSolar{solar: testSolar(t)}),
	)

	app := newTestApp(t, svc, nil, nil)

	body := strings.NewReader(`{"text": "How was Lisbon last week?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalystUnknownProvider(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)

	body := strings.NewReader(`{"text": "anything", "provider": "mystery"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalystUnconfiguredProvider(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)

	body := strings.NewReader(`{"text": "anything", "provider": "gemini"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAnalystUpstreamFailure(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{lisbonPlan}}

	svc := analyst.New(
		analyst.WithGenerator(generator.ProviderAzureOpenAI, gen),
		analyst.WithWeather(&fakeWeather{err: &telemetry.StatusError{Source: "open-meteo", Status: 503}}),
		analyst.WithSolar(&fakeSolar{solar: testSolar(t)}),
	)

	app := newTestApp(t, svc, nil, nil)

	body := strings.NewReader(`{"text": "How was Lisbon last week?", "provider": "azure-openai"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAnalystBadBody(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyst", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewsRoute(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"articles": [{"title": "A", "description": "d", "url": "https://example.com/a", "publishedAt": "2025-09-01T10:00:00Z", "source": {"name": "Example"}}]}`)
	}))
	defer upstream.Close()

	newsSvc := news.New(
		news.WithLocation(upstream.URL),
		news.WithApiKey("key"),
	)

	app := newTestApp(t, nil, newsSvc, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/news?limit=1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Articles []news.Article `json:"articles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Articles, 1)
	assert.Equal(t, "A", payload.Articles[0].Title)
}

func TestNewsRouteValidatesLimit(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/news?limit=99", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewsRouteUnconfigured(t *testing.T) {
	app := newTestApp(t, nil, nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/news", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSnapshotRouteRefreshesOnDemand(t *testing.T) {
	dash := dashboard.New(
		dashboard.WithWeather(&fakeWeather{weather: testWeather(t)}),
		dashboard.WithSolar(&fakeSolar{solar: testSolar(t)}),
	)

	app := newTestApp(t, nil, nil, dash)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot dashboard.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Len(t, snapshot.Metrics, 3)
}

func TestSnapshotRouteUpstreamFailure(t *testing.T) {
	dash := dashboard.New(
		dashboard.WithWeather(&fakeWeather{err: errors.New("open-meteo down")}),
		dashboard.WithSolar(&fakeSolar{solar: testSolar(t)}),
	)

	app := newTestApp(t, nil, nil, dash)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

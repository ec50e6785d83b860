package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"github.com/w-h-a/analyst/telemetry"
)

const solarParameter = "ALLSKY_SFC_SW_DWN"

// NasaPowerProvider fetches daily all-sky solar irradiance from NASA POWER.
type NasaPowerProvider struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewNasaPowerProvider(client *http.Client) *NasaPowerProvider {
	return &NasaPowerProvider{
		baseURL: "https://power.larc.nasa.gov/api/temporal/daily/point",
		client:  client,
		circuit: newBreaker("nasapower"),
	}
}

// FetchSolar requests the daily irradiance series for the coordinate and the
// compact yyyymmdd start/end window. Sentinel entries are dropped during
// normalization.
func (p *NasaPowerProvider) FetchSolar(ctx context.Context, lat, lon float64, start, end string) (telemetry.Series, error) {
	values := url.Values{}
	values.Set("parameters", solarParameter)
	values.Set("start", start)
	values.Set("end", end)
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("community", "RE")
	values.Set("format", "JSON")

	rsp, err := doGet(ctx, p.client, p.circuit, "nasa-power", p.baseURL+"?"+values.Encode())
	if err != nil {
		return telemetry.Series{}, err
	}
	defer rsp.Body.Close()

	var payload struct {
		Properties struct {
			Parameter map[string]map[string]float64 `json:"parameter"`
		} `json:"properties"`
	}

	if err := json.NewDecoder(rsp.Body).Decode(&payload); err != nil {
		return telemetry.Series{}, fmt.Errorf("nasa-power: decode: %w", err)
	}

	solar, ok := payload.Properties.Parameter[solarParameter]
	if !ok || len(solar) == 0 {
		return telemetry.Series{}, fmt.Errorf("%w: nasa-power response missing %s", telemetry.ErrDataUnavailable, solarParameter)
	}

	return telemetry.NormalizeDaily(solar, "kWh/m²")
}

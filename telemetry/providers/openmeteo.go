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

// SurfaceWeather carries the three normalized hourly series one Open-Meteo
// call produces.
type SurfaceWeather struct {
	Temperature telemetry.Series
	Humidity    telemetry.Series
	Wind        telemetry.Series
}

// OpenMeteoProvider fetches hourly surface weather from Open-Meteo.
type OpenMeteoProvider struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newBreaker("openmeteo"),
	}
}

// FetchHourly requests temperature, humidity, and wind for the coordinate and
// hyphenated date range, then normalizes each variable into a Series.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, lat, lon float64, startDate, endDate string) (SurfaceWeather, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("hourly", "temperature_2m,relative_humidity_2m,windspeed_10m,precipitation")
	values.Set("timezone", "UTC")
	if len(startDate) > 0 {
		values.Set("start_date", startDate)
	}
	if len(endDate) > 0 {
		values.Set("end_date", endDate)
	}

	rsp, err := doGet(ctx, p.client, p.circuit, "open-meteo", p.baseURL+"?"+values.Encode())
	if err != nil {
		return SurfaceWeather{}, err
	}
	defer rsp.Body.Close()

	var payload struct {
		Timezone string `json:"timezone"`
		Hourly   struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			Humidity    []float64 `json:"relative_humidity_2m"`
			Wind        []float64 `json:"windspeed_10m"`
		} `json:"hourly"`
		HourlyUnits struct {
			Temperature string `json:"temperature_2m"`
			Humidity    string `json:"relative_humidity_2m"`
			Wind        string `json:"windspeed_10m"`
		} `json:"hourly_units"`
	}

	if err := json.NewDecoder(rsp.Body).Decode(&payload); err != nil {
		return SurfaceWeather{}, fmt.Errorf("open-meteo: decode: %w", err)
	}

	timezone := payload.Timezone
	if len(timezone) == 0 {
		timezone = "UTC"
	}

	temperature, err := telemetry.NormalizeHourly(payload.Hourly.Time, payload.Hourly.Temperature, unitOrDefault(payload.HourlyUnits.Temperature, "°C"), timezone)
	if err != nil {
		return SurfaceWeather{}, err
	}

	humidity, err := telemetry.NormalizeHourly(payload.Hourly.Time, payload.Hourly.Humidity, unitOrDefault(payload.HourlyUnits.Humidity, "%"), timezone)
	if err != nil {
		return SurfaceWeather{}, err
	}

	wind, err := telemetry.NormalizeHourly(payload.Hourly.Time, payload.Hourly.Wind, unitOrDefault(payload.HourlyUnits.Wind, "km/h"), timezone)
	if err != nil {
		return SurfaceWeather{}, err
	}

	return SurfaceWeather{
		Temperature: temperature,
		Humidity:    humidity,
		Wind:        wind,
	}, nil
}

func unitOrDefault(unit, fallback string) string {
	if len(unit) > 0 {
		return unit
	}
	return fallback
}

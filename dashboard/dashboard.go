package dashboard

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/w-h-a/analyst/telemetry"
	"github.com/w-h-a/analyst/telemetry/providers"
)

const compactLayout = "20060102"

// temperatureBaseline is the reference surface temperature the anomaly
// metric compares against.
const temperatureBaseline = 14.0

// WeatherProvider fetches hourly surface weather for a coordinate.
type WeatherProvider interface {
	FetchHourly(ctx context.Context, lat, lon float64, startDate, endDate string) (providers.SurfaceWeather, error)
}

// SolarProvider fetches daily solar irradiance for a coordinate.
type SolarProvider interface {
	FetchSolar(ctx context.Context, lat, lon float64, start, end string) (telemetry.Series, error)
}

// Metric is one dashboard card value with its delta text.
type Metric struct {
	Id     string  `json:"id"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Change string  `json:"change"`
	Badge  string  `json:"badge"`
}

// Snapshot is the combined live view for the configured home coordinate.
type Snapshot struct {
	Metrics []Metric `json:"metrics"`
	Charts  struct {
		Temperature []telemetry.Point `json:"temperature"`
		Humidity    []telemetry.Point `json:"humidity"`
		Solar       []telemetry.Point `json:"solar"`
	} `json:"charts"`
	Summary   Summary   `json:"climateSummary"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type Summary struct {
	Timezone    string        `json:"timezone"`
	Temperature RangedReading `json:"temperature"`
	Humidity    Reading       `json:"humidity"`
	Wind        Reading       `json:"wind"`
}

type Reading struct {
	Current *float64 `json:"current"`
	Average float64  `json:"average"`
	Unit    string   `json:"unit"`
}

type RangedReading struct {
	Reading
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Service keeps the latest snapshot in memory and refreshes it on a schedule.
type Service struct {
	options Options
	latest  *Snapshot
	mtx     sync.RWMutex
}

func New(opts ...Option) *Service {
	return &Service{
		options: NewOptions(opts...),
	}
}

// Latest returns the cached snapshot, if one has been taken.
func (s *Service) Latest() (Snapshot, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}

// Refresh fetches both providers concurrently and replaces the cached
// snapshot.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	now := s.options.Now().UTC()
	start := now.AddDate(0, 0, -s.options.WindowDays).Format(compactLayout)
	end := now.Format(compactLayout)

	var (
		wg         sync.WaitGroup
		weather    providers.SurfaceWeather
		weatherErr error
		solar      telemetry.Series
		solarErr   error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		weather, weatherErr = s.options.Weather.FetchHourly(ctx, s.options.Coords.Latitude, s.options.Coords.Longitude, "", "")
	}()

	go func() {
		defer wg.Done()
		solar, solarErr = s.options.Solar.FetchSolar(ctx, s.options.Coords.Latitude, s.options.Coords.Longitude, start, end)
	}()

	wg.Wait()

	if weatherErr != nil {
		return Snapshot{}, weatherErr
	}
	if solarErr != nil {
		return Snapshot{}, solarErr
	}

	snapshot := build(now, weather, solar)

	s.mtx.Lock()
	s.latest = &snapshot
	s.mtx.Unlock()

	return snapshot, nil
}

// Start schedules periodic refreshes and returns the running scheduler so the
// caller can stop it on shutdown.
func (s *Service) Start(ctx context.Context, interval time.Duration) *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	if _, err := scheduler.Every(interval).Do(func() {
		if _, err := s.Refresh(ctx); err != nil {
			s.options.Logger.Warn("snapshot refresh failed", zap.Error(err))
		}
	}); err != nil {
		s.options.Logger.Error("failed to schedule snapshot refresh", zap.Error(err))
	}

	scheduler.StartAsync()

	return scheduler
}

func build(now time.Time, weather providers.SurfaceWeather, solar telemetry.Series) Snapshot {
	snapshot := Snapshot{
		Metrics: []Metric{
			temperatureMetric(weather.Temperature),
			humidityMetric(weather.Humidity),
			solarMetric(solar),
		},
		Summary: Summary{
			Timezone: weather.Temperature.Timezone,
			Temperature: RangedReading{
				Reading: Reading{
					Current: weather.Temperature.Latest,
					Average: weather.Temperature.Average,
					Unit:    weather.Temperature.Unit,
				},
				High: weather.Temperature.High,
				Low:  weather.Temperature.Low,
			},
			Humidity: Reading{
				Current: weather.Humidity.Latest,
				Average: weather.Humidity.Average,
				Unit:    weather.Humidity.Unit,
			},
			Wind: Reading{
				Current: weather.Wind.Latest,
				Average: weather.Wind.Average,
				Unit:    weather.Wind.Unit,
			},
		},
		FetchedAt: now,
	}

	snapshot.Charts.Temperature = weather.Temperature.Points
	snapshot.Charts.Humidity = weather.Humidity.Points
	snapshot.Charts.Solar = solar.Points

	return snapshot
}

func temperatureMetric(temperature telemetry.Series) Metric {
	latest := value(temperature.Latest)
	return Metric{
		Id:     "temperature",
		Label:  "Surface Temperature Anomaly",
		Value:  round2(temperature.Average - temperatureBaseline),
		Unit:   "°C vs. baseline",
		Change: fmt.Sprintf("%.1f° vs 24h avg", latest-temperature.Average),
		Badge:  "Open-Meteo",
	}
}

func humidityMetric(humidity telemetry.Series) Metric {
	latest := value(humidity.Latest)
	return Metric{
		Id:     "humidity",
		Label:  "Relative Humidity",
		Value:  round1(latest),
		Unit:   humidity.Unit,
		Change: fmt.Sprintf("%+.1f pts vs 24h avg", latest-humidity.Average),
		Badge:  "Open-Meteo",
	}
}

func solarMetric(solar telemetry.Series) Metric {
	latest := value(solar.Latest)
	return Metric{
		Id:     "solar",
		Label:  "Solar Irradiance",
		Value:  round1(latest),
		Unit:   "kWh/m²",
		Change: fmt.Sprintf("%+.1f vs window avg", latest-solar.Average),
		Badge:  "NASA POWER",
	}
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

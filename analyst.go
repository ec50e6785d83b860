package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/w-h-a/analyst/generator"
	"github.com/w-h-a/analyst/memory"
	"github.com/w-h-a/analyst/planner"
	"github.com/w-h-a/analyst/telemetry"
	"github.com/w-h-a/analyst/telemetry/providers"
)

const dateLayout = "2006-01-02"

// Query is one user interaction. It lives for the duration of a single run.
type Query struct {
	Text        string             `json:"text"`
	Provider    generator.Provider `json:"provider"`
	Coords      *planner.Coords    `json:"coords,omitempty"`
	LiveSummary string             `json:"liveSummary,omitempty"`
}

// TelemetryBundle holds the normalized series fetched for one plan.
type TelemetryBundle struct {
	Plan        planner.Plan     `json:"plan"`
	Coords      planner.Coords   `json:"coords"`
	Temperature telemetry.Series `json:"temperature"`
	Humidity    telemetry.Series `json:"humidity"`
	Wind        telemetry.Series `json:"wind"`
	Solar       telemetry.Series `json:"solar"`
}

// Result is the orchestration's sole return value.
type Result struct {
	Message        string             `json:"message"`
	Provider       generator.Provider `json:"provider"`
	Plans          []planner.Plan     `json:"plans"`
	Data           []TelemetryBundle  `json:"data"`
	MemorySnippets []memory.Snippet   `json:"memorySnippets"`
}

// Service sequences the analyst pipeline. Each Run is independent and may
// execute concurrently with others; the service holds no per-run state.
type Service struct {
	options Options
}

func New(opts ...Option) *Service {
	return &Service{
		options: NewOptions(opts...),
	}
}

// Run executes Planning, Fetching, Recalling, Composing, Generating, and
// Persisting in order, emitting one progress event before each stage via
// onProgress (which must not panic; the orchestrator does not guard it).
// Planning, Fetching, and Generating failures are terminal and
// stage-annotated; memory stages never fail the run.
func (s *Service) Run(ctx context.Context, query Query, onProgress func(Stage)) (*Result, error) {
	if len(strings.TrimSpace(query.Text)) == 0 {
		return nil, &StageError{StagePlanning, errors.New("query text is required")}
	}

	logger := s.options.Logger.With(
		zap.String("runId", uuid.New().String()),
		zap.String("provider", string(query.Provider)),
	)

	emit := func(stage Stage) {
		logger.Debug("stage transition", zap.Stringer("stage", stage))
		if onProgress != nil {
			onProgress(stage)
		}
	}

	gen, ok := s.options.Generators[query.Provider]
	if !ok || gen == nil {
		return nil, &StageError{StagePlanning, fmt.Errorf("%w: no credentials for provider %s", generator.ErrMissingConfig, query.Provider)}
	}

	emit(StagePlanning)

	coords := query.Coords
	if coords == nil {
		coords = s.options.DefaultCoords
	}

	plans, err := s.options.Planner.Plan(ctx, gen, query.Text, coords)
	if err != nil {
		return nil, &StageError{StagePlanning, err}
	}

	now := s.options.Now().UTC()
	for i := range plans {
		coerceDates(&plans[i], now)
	}

	emit(StageFetching)

	data := make([]TelemetryBundle, 0, len(plans))
	for _, plan := range plans {
		bundle, err := s.fetch(ctx, plan)
		if err != nil {
			return nil, &StageError{StageFetching, err}
		}
		data = append(data, bundle)
	}

	emit(StageRecalling)

	snippets := s.options.Memory.Recall(ctx, query.Text)

	emit(StageComposing)

	memoryContext := ""
	if len(snippets) > 0 {
		memoryContext = snippets[0].Response
	}
	prompt := composePrompt(now, query, plans, data, memoryContext)

	emit(StageGenerating)

	message, err := gen.Generate(ctx, prompt, generator.WithSystemPrompt(systemPrompt))
	if err != nil {
		return nil, &StageError{StageGenerating, err}
	}

	emit(StagePersisting)

	s.options.Memory.Remember(ctx, query.Text, message)

	emit(StageDone)

	if snippets == nil {
		snippets = []memory.Snippet{}
	}

	return &Result{
		Message:        message,
		Provider:       query.Provider,
		Plans:          plans,
		Data:           data,
		MemorySnippets: snippets,
	}, nil
}

// fetch retrieves one plan's telemetry. The weather and solar calls run
// concurrently: both must complete, and the first failure aborts the pair.
func (s *Service) fetch(ctx context.Context, plan planner.Plan) (TelemetryBundle, error) {
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
		weather, weatherErr = s.options.Weather.FetchHourly(ctx, plan.Lat, plan.Lon, plan.StartDate, plan.EndDate)
	}()

	go func() {
		defer wg.Done()
		solar, solarErr = s.options.Solar.FetchSolar(ctx, plan.Lat, plan.Lon, compactDate(plan.StartDate), compactDate(plan.EndDate))
	}()

	wg.Wait()

	if weatherErr != nil {
		return TelemetryBundle{}, weatherErr
	}
	if solarErr != nil {
		return TelemetryBundle{}, solarErr
	}

	return TelemetryBundle{
		Plan:        plan,
		Coords:      planner.Coords{Latitude: plan.Lat, Longitude: plan.Lon},
		Temperature: weather.Temperature,
		Humidity:    weather.Humidity,
		Wind:        weather.Wind,
		Solar:       solar,
	}, nil
}

// coerceDates normalizes a plan's range so start is strictly before end,
// rewriting start to one day before end when the model returned start >= end.
// Missing dates default to an end of today and a seven-day window.
func coerceDates(plan *planner.Plan, now time.Time) {
	end := parseDate(plan.EndDate, now)
	start := parseDate(plan.StartDate, end.AddDate(0, 0, -7))

	if !start.Before(end) {
		start = end.AddDate(0, 0, -1)
	}

	plan.StartDate = start.Format(dateLayout)
	plan.EndDate = end.Format(dateLayout)
}

func parseDate(raw string, fallback time.Time) time.Time {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t
	}
	return fallback.Truncate(24 * time.Hour)
}

func compactDate(hyphenated string) string {
	return strings.ReplaceAll(hyphenated, "-", "")
}

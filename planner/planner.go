package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/w-h-a/analyst/generator"
)

// ErrPlanParse indicates the model's output could not be interpreted as the
// expected plan array. There is no fallback plan: an unverifiable plan could
// point telemetry fetches at the wrong place.
var ErrPlanParse = errors.New("could not parse plans from the model response")

// Coords is a latitude/longitude pair.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Plan is a single location and date-range scope derived from a user query.
type Plan struct {
	Location  string  `json:"location" validate:"required"`
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon       float64 `json:"lon" validate:"gte=-180,lte=180"`
	StartDate string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     string  `json:"notes"`
}

// Planner turns raw user text into an ordered sequence of plans by prompting a
// generator with a constrained-output instruction.
type Planner struct {
	validate *validator.Validate
	now      func() time.Time
}

func New() *Planner {
	return &Planner{
		validate: validator.New(),
		now:      time.Now,
	}
}

func (p *Planner) Plan(ctx context.Context, gen generator.Generator, query string, coords *Coords) ([]Plan, error) {
	raw, err := gen.Generate(
		ctx,
		p.userPrompt(query, coords),
		generator.WithSystemPrompt(p.systemPrompt()),
	)
	if err != nil {
		return nil, err
	}

	plans, err := p.parse(raw)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (p *Planner) systemPrompt() string {
	return strings.Join([]string{
		"You are a climate parameter planner.",
		`Task: Return ONLY a JSON array of objects. Each object must have fields {"location":"string","lat":number,"lon":number,"start_date":"YYYY-MM-DD","end_date":"YYYY-MM-DD","notes":"string"}.`,
		"If the user asks for multiple cities or time ranges, emit multiple objects, one per city/time slice. Each city/region must have its own coordinates.",
		"Use the provided current coordinates ONLY when the user implies the current location; otherwise, geocode each named place separately.",
		"Interpret the user query and choose appropriate coordinates and dates (today/tomorrow/next 7 days).",
		"If the user doesn't specify anything about place, use the current coordinates.",
		"Do not include prose or markdown. JSON array only.",
		fmt.Sprintf("Current timestamp (UTC): %s", p.now().UTC().Format(time.RFC3339)),
	}, "\n")
}

func (p *Planner) userPrompt(query string, coords *Coords) string {
	coordText := "No current coordinates provided; detect coordinates per city/region mentioned."
	if coords != nil {
		coordText = fmt.Sprintf(
			"Current coordinates provided: lat %v, lon %v. For any named city/region, detect and use that location's own coordinates, otherwise use provided current location coordinates.",
			coords.Latitude, coords.Longitude,
		)
	}

	return strings.Join([]string{
		coordText,
		fmt.Sprintf("User query: %s", query),
		"Return JSON only.",
	}, "\n")
}

// parse extracts the substring between the first '[' and the last ']' and
// decodes it as a plan array, validating every entry.
func (p *Planner) parse(raw string) ([]Plan, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON array in output", ErrPlanParse)
	}

	var plans []Plan
	if err := json.Unmarshal([]byte(raw[start:end+1]), &plans); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanParse, err)
	}

	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: empty plan array", ErrPlanParse)
	}

	for i, plan := range plans {
		if err := p.validate.Struct(plan); err != nil {
			return nil, fmt.Errorf("%w: plan %d: %v", ErrPlanParse, i+1, err)
		}
	}

	return plans, nil
}

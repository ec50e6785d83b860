package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/analyst/generator"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
	system   string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	g.prompt = prompt
	options := generator.NewGenerateOptions(opts...)
	g.system = options.SystemPrompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func TestPlanParsesArray(t *testing.T) {
	gen := &fakeGenerator{
		response: `Here are your plans:
[{"location":"Lisbon","lat":38.72,"lon":-9.14,"start_date":"2025-08-25","end_date":"2025-09-01","notes":"last week"}]
Let me know if you need anything else.`,
	}

	plans, err := New().Plan(context.Background(), gen, "How was Lisbon last week?", nil)
	require.NoError(t, err)

	require.Len(t, plans, 1)
	assert.Equal(t, "Lisbon", plans[0].Location)
	assert.Equal(t, 38.72, plans[0].Lat)
	assert.Equal(t, -9.14, plans[0].Lon)
	assert.Equal(t, "2025-08-25", plans[0].StartDate)
	assert.Equal(t, "2025-09-01", plans[0].EndDate)
}

func TestPlanMultipleScopes(t *testing.T) {
	gen := &fakeGenerator{
		response: `[
			{"location":"Lisbon","lat":38.72,"lon":-9.14,"start_date":"2025-08-25","end_date":"2025-09-01","notes":""},
			{"location":"Porto","lat":41.15,"lon":-8.61,"start_date":"2025-08-25","end_date":"2025-09-01","notes":""}
		]`,
	}

	plans, err := New().Plan(context.Background(), gen, "Compare Lisbon and Porto", nil)
	require.NoError(t, err)

	require.Len(t, plans, 2)
	assert.Equal(t, "Lisbon", plans[0].Location)
	assert.Equal(t, "Porto", plans[1].Location)
}

func TestPlanParseFailures(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no brackets", "I cannot produce a plan for that."},
		{"malformed json", `[{"location": "Lisbon", "lat": }]`},
		{"empty array", "[]"},
		{"missing location", `[{"lat":38.72,"lon":-9.14,"notes":""}]`},
		{"latitude out of range", `[{"location":"Nowhere","lat":123.0,"lon":0,"notes":""}]`},
		{"bad date format", `[{"location":"Lisbon","lat":38.72,"lon":-9.14,"start_date":"25-08-2025","notes":""}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response}

			_, err := New().Plan(context.Background(), gen, "anything", nil)
			assert.ErrorIs(t, err, ErrPlanParse)
		})
	}
}

func TestPlanPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("model offline")
	gen := &fakeGenerator{err: wantErr}

	_, err := New().Plan(context.Background(), gen, "anything", nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestPlanPromptsIncludeCoords(t *testing.T) {
	gen := &fakeGenerator{
		response: `[{"location":"here","lat":1,"lon":2,"notes":""}]`,
	}

	_, err := New().Plan(context.Background(), gen, "what is the weather here", &Coords{Latitude: 37.7749, Longitude: -122.4194})
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "lat 37.7749")
	assert.Contains(t, gen.prompt, "lon -122.4194")
	assert.Contains(t, gen.prompt, "User query: what is the weather here")
	assert.Contains(t, gen.system, "JSON array")
}

func TestPlanPromptWithoutCoords(t *testing.T) {
	gen := &fakeGenerator{
		response: `[{"location":"Lisbon","lat":38.72,"lon":-9.14,"notes":""}]`,
	}

	_, err := New().Plan(context.Background(), gen, "Lisbon weather", nil)
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "No current coordinates provided")
}

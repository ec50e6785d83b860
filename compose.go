package analyst

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/w-h-a/analyst/planner"
	"github.com/w-h-a/analyst/telemetry"
)

const systemPrompt = "You are an AI climate analyst. Blend live telemetry (temperature, humidity, wind, solar irradiance) with memory snippets to produce concise, actionable recommendations. Always cite the data source and propose a clear next action."

// composePrompt renders the grounded prompt: current date, the original
// query, serialized plans, the most-similar memory snippet, then per-plan
// derived statistics and raw series, in that fixed order. Identical inputs
// produce identical prompts.
func composePrompt(now time.Time, query Query, plans []planner.Plan, data []TelemetryBundle, memoryContext string) string {
	plansJSON, _ := json.Marshal(plans)

	liveSummary := query.LiveSummary
	if len(liveSummary) == 0 {
		liveSummary = "n/a"
	}

	memoryLine := "Memory context: none"
	if len(memoryContext) > 0 {
		memoryLine = "Memory context: " + memoryContext
	}

	lines := []string{
		"You are a climate analyst. Use the provided live data to answer succinctly.",
		"Today: " + now.Format(dateLayout),
		"User query: " + query.Text,
		"Planned scopes: " + string(plansJSON),
		"Live summary: " + liveSummary,
		memoryLine,
		"Data by plan:",
	}

	for i, entry := range data {
		location := entry.Plan.Location
		if len(location) == 0 {
			location = "location"
		}

		lines = append(lines,
			fmt.Sprintf("Plan %d (%s):", i+1, location),
			fmt.Sprintf("- Temp avg: %s %s, latest: %s", num(entry.Temperature.Average), entry.Temperature.Unit, numPtr(entry.Temperature.Latest)),
			fmt.Sprintf("- Humidity avg: %s %s, latest: %s", num(entry.Humidity.Average), entry.Humidity.Unit, numPtr(entry.Humidity.Latest)),
			fmt.Sprintf("- Wind avg: %s %s, latest: %s", num(entry.Wind.Average), entry.Wind.Unit, numPtr(entry.Wind.Latest)),
			fmt.Sprintf("- Solar latest: %s kWh/m², window avg: %s kWh/m²", numPtr(entry.Solar.Latest), num(entry.Solar.Average)),
			fmt.Sprintf(
				"Raw series: temp=%s; humidity=%s; wind=%s; solar=%s",
				pointsJSON(entry.Temperature),
				pointsJSON(entry.Humidity),
				pointsJSON(entry.Wind),
				pointsJSON(entry.Solar),
			),
		)
	}

	lines = append(lines, "Provide a concise (unless the user query asked for an elaborated report) recommendation and cite metrics.")

	return strings.Join(lines, "\n")
}

func pointsJSON(series telemetry.Series) string {
	data, _ := json.Marshal(series.Points)
	return string(data)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func numPtr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return num(*v)
}

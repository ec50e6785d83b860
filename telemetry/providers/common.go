package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/w-h-a/analyst/telemetry"
)

const userAgent = "climate-analyst/1.0"

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doGet executes the GET through the circuit breaker. Non-2xx statuses are
// surfaced as telemetry.StatusError and count as breaker failures.
func doGet(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, source, url string) (*http.Response, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		rsp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
			rsp.Body.Close()
			return nil, &telemetry.StatusError{Source: source, Status: rsp.StatusCode}
		}

		return rsp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: circuit open: %w", source, err)
		}
		return nil, err
	}

	rsp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", source)
	}

	return rsp, nil
}

package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultQuery = "climate OR renewable"

// ErrMissingConfig indicates no news API key is configured.
var ErrMissingConfig = errors.New("missing configuration: news api key")

// Article is one summarized news record.
type Article struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

// Service proxies the news API, returning a shuffled, capped, summarized
// list of articles. It is page content only, never analyst grounding data.
type Service struct {
	options Options
	client  *http.Client
}

func New(opts ...Option) *Service {
	return &Service{
		options: NewOptions(opts...),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) Fetch(ctx context.Context, limit int) ([]Article, error) {
	if len(s.options.ApiKey) == 0 {
		return nil, ErrMissingConfig
	}
	if limit < 1 {
		limit = s.options.Limit
	}

	values := url.Values{}
	values.Set("q", defaultQuery)
	values.Set("language", "en")
	values.Set("sortBy", "publishedAt")
	values.Set("pageSize", "20")
	values.Set("domains", "apnews.com,bbc.co.uk,guardian.co.uk,reuters.com,nytimes.com")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.options.Location+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", s.options.ApiKey)

	rsp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, fmt.Errorf("news api: unexpected status %d", rsp.StatusCode)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
			Url         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}

	if err := json.NewDecoder(rsp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if len(payload.Articles) == 0 {
		return nil, errors.New("news payload empty")
	}

	items := payload.Articles
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	if limit > len(items) {
		limit = len(items)
	}

	articles := make([]Article, 0, limit)
	for i, item := range items[:limit] {
		id := item.Url
		if len(id) == 0 {
			id = fmt.Sprintf("news-%d", i)
		}

		body := item.Description
		if len(body) == 0 {
			body = item.Content
		}

		publishedAt := item.PublishedAt
		if len(publishedAt) == 0 {
			publishedAt = time.Now().UTC().Format(time.RFC3339)
		}

		source := item.Source.Name
		if len(source) == 0 {
			source = "newsapi.org"
		}

		articles = append(articles, Article{
			Id:          id,
			Title:       item.Title,
			Summary:     summarize(body, 160),
			Link:        item.Url,
			Source:      source,
			PublishedAt: publishedAt,
		})
	}

	return articles, nil
}

// summarize collapses whitespace and truncates at maxLength runes.
func summarize(text string, maxLength int) string {
	clean := strings.Join(strings.Fields(text), " ")
	if len(clean) == 0 {
		return "Tap through to read the full discussion."
	}

	runes := []rune(clean)
	if len(runes) <= maxLength {
		return clean
	}

	return strings.TrimSpace(string(runes[:maxLength])) + "…"
}

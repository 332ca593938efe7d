package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaTimeout  = 15 * time.Second
)

// Adzuna fetches postings from the Adzuna public API. When credentials are
// missing FetchPage returns an empty page without error, so the pipeline
// simply skips the source for that round.
type Adzuna struct {
	AppID   string
	AppKey  string
	Country string // "gb", "fr", "us", ...

	client *http.Client
	logger *zap.Logger
}

// NewAdzuna constructs the adapter with a shared HTTP client.
func NewAdzuna(appID, appKey, country string, logger *zap.Logger) *Adzuna {
	if country == "" {
		country = "gb"
	}
	return &Adzuna{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		client:  &http.Client{Timeout: adzunaTimeout},
		logger:  logger,
	}
}

func (a *Adzuna) Name() string { return "adzuna" }

func (a *Adzuna) PageSize() int { return adzunaPageSize }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	RedirectURL string  `json:"redirect_url"`
	Created     string  `json:"created"`
}

func (a *Adzuna) FetchPage(ctx context.Context, query, location string, page int) ([]RawPosting, error) {
	if a.AppID == "" || a.AppKey == "" {
		a.logger.Warn("adzuna credentials not set, skipping fetch")
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", adzunaBaseURL, a.Country, page)

	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query)
	params.Set("where", location)
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	postings := make([]RawPosting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		postings = append(postings, RawPosting{
			ExternalID:  r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			URL:         r.RedirectURL,
			PostedAt:    r.Created,
		})
	}

	return postings, nil
}

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const boardTimeout = 15 * time.Second

// BoardConfig maps one company application-tracking board onto the adapter
// contract. ATS boards (Greenhouse, Lever and friends) all speak JSON but
// disagree on shape, so fields are addressed by gjson paths instead of typed
// structs. The URL may contain {query}, {location} and {page} placeholders.
type BoardConfig struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	PageSize int    `mapstructure:"page-size"`

	// gjson paths, relative to the response root / item.
	ItemsPath    string `mapstructure:"items-path"`
	IDPath       string `mapstructure:"id-path"`
	TitlePath    string `mapstructure:"title-path"`
	CompanyPath  string `mapstructure:"company-path"`
	LocationPath string `mapstructure:"location-path"`
	DescPath     string `mapstructure:"description-path"`
	URLPath      string `mapstructure:"url-path"`
	PostedPath   string `mapstructure:"posted-path"`

	// Company is used when the board does not embed an employer name
	// (single-company ATS boards usually don't).
	Company string `mapstructure:"company"`
}

// JSONBoard is the generic adapter for path-mapped JSON boards.
type JSONBoard struct {
	cfg    BoardConfig
	client *http.Client
}

func NewJSONBoard(cfg BoardConfig) (*JSONBoard, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("board name is required")
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("board %q: url is required", cfg.Name)
	}
	if strings.TrimSpace(cfg.ItemsPath) == "" {
		return nil, fmt.Errorf("board %q: items-path is required", cfg.Name)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	return &JSONBoard{
		cfg:    cfg,
		client: &http.Client{Timeout: boardTimeout},
	}, nil
}

func (b *JSONBoard) Name() string { return b.cfg.Name }

func (b *JSONBoard) PageSize() int { return b.cfg.PageSize }

func (b *JSONBoard) FetchPage(ctx context.Context, query, location string, page int) ([]RawPosting, error) {
	url := strings.NewReplacer(
		"{query}", query,
		"{location}", location,
		"{page}", strconv.Itoa(page),
	).Replace(b.cfg.URL)

	// Boards without a page placeholder hold everything on one page.
	if page > 1 && !strings.Contains(b.cfg.URL, "{page}") {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
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
		return nil, fmt.Errorf("board %s returned %d", b.cfg.Name, resp.StatusCode)
	}

	return b.parse(body), nil
}

func (b *JSONBoard) parse(body []byte) []RawPosting {
	items := gjson.GetBytes(body, b.cfg.ItemsPath)
	if !items.Exists() {
		return nil
	}

	var postings []RawPosting
	items.ForEach(func(_, item gjson.Result) bool {
		company := item.Get(b.cfg.CompanyPath).String()
		if company == "" {
			company = b.cfg.Company
		}

		postings = append(postings, RawPosting{
			ExternalID:  item.Get(b.cfg.IDPath).String(),
			Title:       item.Get(b.cfg.TitlePath).String(),
			Company:     company,
			Location:    item.Get(b.cfg.LocationPath).String(),
			Description: item.Get(b.cfg.DescPath).String(),
			URL:         item.Get(b.cfg.URLPath).String(),
			PostedAt:    item.Get(b.cfg.PostedPath).String(),
		})
		return true
	})

	return postings
}

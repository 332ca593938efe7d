package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const careersTimeout = 20 * time.Second

// CareersConfig maps a static HTML careers page onto the adapter contract
// using CSS selectors. These pages are unpaged listings, so the adapter
// reports one oversized page and the fetch loop stops after it.
type CareersConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Company     string `mapstructure:"company"`
	ItemSel     string `mapstructure:"item-selector"`
	TitleSel    string `mapstructure:"title-selector"`
	LocationSel string `mapstructure:"location-selector"`
	LinkSel     string `mapstructure:"link-selector"`
}

// CareersPage scrapes job listings from a company careers page.
type CareersPage struct {
	cfg    CareersConfig
	client *http.Client
}

func NewCareersPage(cfg CareersConfig) (*CareersPage, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("careers page name is required")
	}
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.ItemSel) == "" {
		return nil, fmt.Errorf("careers page %q: url and item-selector are required", cfg.Name)
	}
	return &CareersPage{
		cfg:    cfg,
		client: &http.Client{Timeout: careersTimeout},
	}, nil
}

func (c *CareersPage) Name() string { return c.cfg.Name }

// PageSize is intentionally larger than any real listing so that a single
// fetched page always reads as the last one.
func (c *CareersPage) PageSize() int { return 1000 }

func (c *CareersPage) FetchPage(ctx context.Context, _, _ string, page int) ([]RawPosting, error) {
	if page > 1 {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("careers page %s returned %d", c.cfg.Name, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return c.parse(doc), nil
}

func (c *CareersPage) parse(doc *goquery.Document) []RawPosting {
	var postings []RawPosting
	doc.Find(c.cfg.ItemSel).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(c.cfg.TitleSel).First().Text())
		if title == "" {
			return
		}

		link := ""
		if c.cfg.LinkSel != "" {
			link, _ = s.Find(c.cfg.LinkSel).First().Attr("href")
		} else {
			link, _ = s.Find("a").First().Attr("href")
		}

		postings = append(postings, RawPosting{
			Title:    title,
			Company:  c.cfg.Company,
			Location: strings.TrimSpace(s.Find(c.cfg.LocationSel).First().Text()),
			URL:      absoluteURL(c.cfg.URL, link),
		})
	})
	return postings
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

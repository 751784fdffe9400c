package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/jarvis/pkg/domain/interfaces"
	"github.com/secmon-lab/jarvis/pkg/domain/model"
	"github.com/secmon-lab/jarvis/pkg/utils/safe"
)

const (
	defaultLanguage  = "en"
	defaultUserAgent = "jarvis/1.0 (https://github.com/secmon-lab/jarvis)"
	defaultTimeout   = 10 * time.Second

	// disambiguationLinkLimit bounds the options fetched for an ambiguous query
	disambiguationLinkLimit = 50

	// maxResponseSize bounds the API response body read into memory
	maxResponseSize = 4 << 20
)

// Client summarizes Wikipedia articles through the MediaWiki Action API
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

var _ interfaces.Encyclopedia = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithEndpoint sets the api.php URL, e.g. for a test server
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithLanguage selects the language edition, e.g. "ja"
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.endpoint = languageEndpoint(lang)
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func languageEndpoint(lang string) string {
	return "https://" + lang + ".wikipedia.org/w/api.php"
}

// New creates a client for the English Wikipedia unless configured otherwise
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   languageEndpoint(defaultLanguage),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type page struct {
	Title     string            `json:"title"`
	Missing   bool              `json:"missing"`
	Extract   string            `json:"extract"`
	PageProps map[string]string `json:"pageprops"`
	Links     []struct {
		NS    int    `json:"ns"`
		Title string `json:"title"`
	} `json:"links"`
}

type pagesResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

type apiError struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Summarize returns the first sentences of the best matching article.
// Ambiguous queries fail with *model.DisambiguationError and queries without
// a match fail with interfaces.ErrNotFound.
func (c *Client) Summarize(ctx context.Context, query string, sentences int) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", goerr.Wrap(interfaces.ErrNotFound, "empty query")
	}
	if sentences <= 0 {
		sentences = 1
	}

	title, err := c.search(ctx, query)
	if err != nil {
		return "", err
	}

	p, err := c.page(ctx, title, sentences)
	if err != nil {
		return "", err
	}

	if _, ok := p.PageProps["disambiguation"]; ok {
		options, err := c.links(ctx, p.Title)
		if err != nil {
			return "", err
		}
		return "", &model.DisambiguationError{Query: query, Options: options}
	}

	summary := strings.TrimSpace(p.Extract)
	if summary == "" {
		return "", goerr.Wrap(interfaces.ErrNotFound, "article has no summary",
			goerr.V("query", query), goerr.V("title", p.Title))
	}

	return summary, nil
}

func (c *Client) search(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"srprop":   {""},
	}

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Query.Search) == 0 {
		return "", goerr.Wrap(interfaces.ErrNotFound, "no search result", goerr.V("query", query))
	}

	return resp.Query.Search[0].Title, nil
}

func (c *Client) page(ctx context.Context, title string, sentences int) (*page, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts|pageprops"},
		"ppprop":      {"disambiguation"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"exsentences": {strconv.Itoa(sentences)},
		"redirects":   {"1"},
		"titles":      {title},
	}

	var resp pagesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "page does not exist", goerr.V("title", title))
	}

	return &resp.Query.Pages[0], nil
}

func (c *Client) links(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"links"},
		"plnamespace": {"0"},
		"pllimit":     {strconv.Itoa(disambiguationLinkLimit)},
		"titles":      {title},
	}

	var resp pagesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	options := make([]string, 0)
	for _, p := range resp.Query.Pages {
		for _, l := range p.Links {
			options = append(options, l.Title)
		}
	}

	return options, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	reqURL := c.endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create wikipedia request", goerr.V("url", reqURL))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "wikipedia request failed", goerr.V("url", reqURL))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to read wikipedia response", goerr.V("url", reqURL))
	}
	if len(body) > maxResponseSize {
		return goerr.Wrap(interfaces.ErrCollaborator, "wikipedia response too large",
			goerr.V("url", reqURL),
			goerr.V("limit", maxResponseSize))
	}

	if resp.StatusCode != http.StatusOK {
		return goerr.Wrap(interfaces.ErrCollaborator, "wikipedia returned an error status",
			goerr.V("url", reqURL),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		return goerr.Wrap(interfaces.ErrCollaborator, "wikipedia API error",
			goerr.V("code", apiErr.Error.Code),
			goerr.V("info", apiErr.Error.Info))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return goerr.Wrap(errors.Join(interfaces.ErrCollaborator, err), "failed to decode wikipedia response",
			goerr.V("url", reqURL))
	}

	return nil
}

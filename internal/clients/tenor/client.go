// Package tenor is a client for the Tenor v2 GIF search API.
package tenor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	BaseURL = "https://tenor.googleapis.com/v2"

	// searchLimit caps how many results one search returns; the pick
	// among them is uniform random.
	searchLimit = 8
)

// Client is a Tenor API client.
type Client struct {
	key        string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Tenor client with the given API key.
func NewClient(key string) *Client {
	return &Client{
		key:     key,
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type searchResponse struct {
	Results []struct {
		MediaFormats map[string]struct {
			URL string `json:"url"`
		} `json:"media_formats"`
	} `json:"results"`
}

// RandomImage searches for query and returns one GIF URL picked uniformly
// among the results.
func (c *Client) RandomImage(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.key)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("random", "True")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search gifs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tenor API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var urls []string
	for _, res := range parsed.Results {
		if gif, ok := res.MediaFormats["gif"]; ok && gif.URL != "" {
			urls = append(urls, gif.URL)
		}
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("no %q gifs returned", query)
	}
	return urls[rand.Intn(len(urls))], nil
}

// Package nutritionix resolves a free-text food description to a canonical
// food name and calorie count via the Nutritionix instant-search API.
package nutritionix

import (
	"bytes"         // Request body buffer
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel errors
	"fmt"           // Error wrapping
	"io"            // Response body reading
	"net/http"      // HTTP client
	"time"          // Client timeout
)

// DefaultBaseURL is the production Nutritionix endpoint
const DefaultBaseURL = "https://trackapi.nutritionix.com"

// ErrNotFound is returned when the API has no match for the query
var ErrNotFound = errors.New("nutritionix: food not found")

// Client calls the Nutritionix instant-search API
type Client struct {
	baseURL string       // API base URL, overridable for tests
	appID   string       // x-app-id header value
	appKey  string       // x-app-key header value
	client  *http.Client // HTTP client with timeout
}

// NewClient builds a Client for the given credentials. An empty baseURL
// falls back to the production endpoint.
func NewClient(baseURL, appID, appKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		appID:   appID,
		appKey:  appKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Food is one resolved food item
type Food struct {
	Name     string // Canonical food name
	Calories int    // Calories for the default serving
}

// instantResponse mirrors the fields we need from /v2/search/instant
type instantResponse struct {
	Branded []struct {
		FoodName string  `json:"food_name"`
		Calories float64 `json:"nf_calories"`
	} `json:"branded"`
	Common []struct {
		FoodName string `json:"food_name"`
	} `json:"common"`
}

// Lookup resolves query to the first branded match. Returns ErrNotFound when
// the API reports no common results for the query.
func (c *Client) Lookup(query string) (*Food, error) {
	payload := map[string]any{
		"query":    query,
		"detailed": true,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("nutritionix: marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v2/search/instant", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("nutritionix: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nutritionix: call API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nutritionix: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nutritionix: API error %d: %s", resp.StatusCode, string(body))
	}

	var ir instantResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return nil, fmt.Errorf("nutritionix: parse response: %w", err)
	}
	// The instant endpoint signals a usable match through the common list but
	// carries calorie data on the branded list
	if len(ir.Common) == 0 || len(ir.Branded) == 0 {
		return nil, ErrNotFound
	}
	item := ir.Branded[0]
	return &Food{Name: item.FoodName, Calories: int(item.Calories)}, nil
}

// Package sdk is a small client for the commune locator API.
package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{BaseURL: baseURL, APIKey: apiKey, HTTP: http.DefaultClient}
}

func (c *Client) headers(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")
}

// Commune identifies a commune by name and dataset position.
type Commune struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Point is a coordinate in signed decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LookupResult mirrors the lookup endpoint's response.
type LookupResult struct {
	Found     bool     `json:"found"`
	MatchedBy string   `json:"matched_by"`
	Point     *Point   `json:"point"`
	DMS       string   `json:"dms"`
	Commune   *Commune `json:"commune"`
}

func (c *Client) postJSON(path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.headers(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s", resp.Status, data)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Lookup resolves free text (a decimal pair, a DMS string, or a commune name)
// to a commune.
func (c *Client) Lookup(text string) (*LookupResult, error) {
	var out LookupResult
	err := c.postJSON("/v1/lookup", map[string]string{
		"mode": "decimal_pair",
		"text": text,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupPoint resolves a numeric coordinate to its commune.
func (c *Client) LookupPoint(lat, lon float64) (*LookupResult, error) {
	var out LookupResult
	err := c.postJSON("/v1/lookup", map[string]interface{}{
		"mode":  "map_click",
		"click": Point{Latitude: lat, Longitude: lon},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupName resolves a commune by (accent-insensitive) name.
func (c *Client) LookupName(query string) (*LookupResult, error) {
	var out LookupResult
	err := c.postJSON("/v1/lookup/name", map[string]string{"query": query}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Communes lists the loaded communes in dataset order.
func (c *Client) Communes() ([]Commune, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/v1/communes", nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Data []Commune `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ExportSession downloads a session's points as GeoJSON.
func (c *Client) ExportSession(sessionID string) ([]byte, error) {
	req, err := http.NewRequest("GET", c.BaseURL+"/v1/sessions/"+sessionID+"/export", nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

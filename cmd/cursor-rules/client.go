package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const apiPrefix = "/api/v1"

// apiClient is a thin JSON client for the rules HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{baseURL: baseURL, http: http.DefaultClient}
}

// get issues a GET to an API endpoint and decodes the JSON response into out.
func (c *apiClient) get(endpoint string, out any) error {
	resp, err := c.http.Get(c.baseURL + apiPrefix + endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to rules server: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// post issues a POST with a JSON body and decodes the JSON response into out.
func (c *apiClient) post(endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	resp, err := c.http.Post(c.baseURL+apiPrefix+endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to connect to rules server: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Detail != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, apiErr.Detail)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

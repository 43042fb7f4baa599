package httpx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
}

// Client is a small JSON-over-HTTP client for the boxcode API, used by the
// command line tool.
type Client struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides the default transport; tests use this.
	Transport http.RoundTripper
}

// Do sends a request with the given headers and optional JSON body and
// returns the raw response body. Non-2xx responses are returned as HTTPError.
func (c *Client) Do(method, path string, header http.Header, reqObj any) ([]byte, error) {
	var body io.Reader
	if reqObj != nil {
		reqBody, err := json.Marshal(reqObj)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(reqBody)
	}

	request, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if reqObj != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for k, vals := range header {
		for _, v := range vals {
			request.Header.Add(k, v)
		}
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	if c.Transport != nil {
		client.Transport = c.Transport
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	rspBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Message:    string(rspBody),
		}
	}
	return rspBody, nil
}

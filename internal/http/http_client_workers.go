//go:build js && wasm

package http

import (
	"net/http"

	"github.com/syumai/workers/cloudflare/fetch"
)

// WorkersHTTPClient implements HTTPClient on top of the Workers fetch API.
type WorkersHTTPClient struct {
	client *fetch.Client
}

// NewHTTPClient returns a fetch backed client for the Workers runtime.
func NewHTTPClient() HTTPClient {
	return &WorkersHTTPClient{
		client: fetch.NewClient(),
	}
}

// Do performs req through fetch, carrying over its context and headers.
func (c *WorkersHTTPClient) Do(req *http.Request) (*http.Response, error) {
	fetchReq, err := fetch.NewRequest(req.Context(), req.Method, req.URL.String(), req.Body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Header {
		for _, value := range values {
			fetchReq.Header.Add(key, value)
		}
	}

	return c.client.Do(fetchReq, nil)
}

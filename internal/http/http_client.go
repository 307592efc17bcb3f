package http

import "net/http"

// HTTPClient is the subset of *http.Client used to talk to the board.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

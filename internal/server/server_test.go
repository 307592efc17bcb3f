package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvcrn/ledspeed/internal/device"
	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/dvcrn/ledspeed/internal/speed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *device.Controller) {
	t.Helper()
	controller, err := device.NewController(context.Background(), device.NewMemoryStore(), device.Limits{Min: 0, Max: 1000})
	require.NoError(t, err)
	controller.SetLogger(logger.Nop())

	srv := httptest.NewServer(NewServer(controller, opts...))
	t.Cleanup(srv.Close)
	return srv, controller
}

func do(t *testing.T, method, url, contentType, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestGetSpeed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/speed", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"led1":500,"led2":500,"led3":500}`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestPostSpeed(t *testing.T) {
	srv, controller := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/speed", "application/json", `{"led1":10,"led2":20,"led3":3000}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"led1":10,"led2":20,"led3":1000}`, body)
	assert.Equal(t, speed.Settings{LED1: 10, LED2: 20, LED3: 1000}, controller.Speeds())
}

func TestPostSpeedRejects(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{name: "missing channel", contentType: "application/json", body: `{"led1":1,"led2":2}`, status: http.StatusBadRequest},
		{name: "extra channel", contentType: "application/json", body: `{"led1":1,"led2":2,"led3":3,"led4":4}`, status: http.StatusBadRequest},
		{name: "string value", contentType: "application/json", body: `{"led1":"1","led2":2,"led3":3}`, status: http.StatusBadRequest},
		{name: "not json", contentType: "application/json", body: `led1=1`, status: http.StatusBadRequest},
		{name: "trailing data", contentType: "application/json", body: `{"led1":1,"led2":2,"led3":3} garbage`, status: http.StatusBadRequest},
		{name: "second object", contentType: "application/json", body: `{"led1":1,"led2":2,"led3":3}{"led1":4,"led2":5,"led3":6}`, status: http.StatusBadRequest},
		{name: "form content type", contentType: "application/x-www-form-urlencoded", body: `led1=1`, status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, controller := newTestServer(t)

			resp, _ := do(t, http.MethodPost, srv.URL+"/speed", tc.contentType, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, device.DefaultSettings, controller.Speeds())
		})
	}
}

func TestPostSpeedAllowsTrailingWhitespace(t *testing.T) {
	srv, controller := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/speed", "application/json", "{\"led1\":1,\"led2\":2,\"led3\":3}\n\t ")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, speed.Settings{LED1: 1, LED2: 2, LED3: 3}, controller.Speeds())
}

type sharedMemoryStore struct {
	*device.MemoryStore
}

func (sharedMemoryStore) Shared() bool { return true }

func TestSharedStoreSeenAcrossServers(t *testing.T) {
	store := sharedMemoryStore{device.NewMemoryStore()}

	newServer := func() *httptest.Server {
		controller, err := device.NewController(context.Background(), store, device.DefaultLimits)
		require.NoError(t, err)
		controller.SetLogger(logger.Nop())
		srv := httptest.NewServer(NewServer(controller))
		t.Cleanup(srv.Close)
		return srv
	}
	a, b := newServer(), newServer()

	resp, _ := do(t, http.MethodPost, a.URL+"/speed", "application/json", `{"led1":7,"led2":8,"led3":9}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, b.URL+"/speed", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"led1":7,"led2":8,"led3":9}`, body)

	_, body = do(t, http.MethodGet, b.URL+"/leds", "", "")
	assert.Contains(t, body, `"period_ms":9`)
}

func TestSpeedMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := do(t, http.MethodPut, srv.URL+"/speed", "application/json", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, WithCORSOrigin("http://localhost:5173"))

	resp, _ := do(t, http.MethodOptions, srv.URL+"/speed", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Content-Type")

	resp, _ = do(t, http.MethodGet, srv.URL+"/speed", "", "")
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLEDs(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/leds", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"name":"led1"`)
	assert.Contains(t, body, `"color":"red"`)
	assert.Contains(t, body, `"period_ms":500`)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	do(t, http.MethodPost, srv.URL+"/speed", "application/json", `{"led1":1,"led2":2,"led3":5000}`)

	resp, body = do(t, http.MethodGet, srv.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `ledspeed_http_requests_total{code="200",method="POST",route="/speed"} 1`)
	assert.Contains(t, body, `ledspeed_speed_applies_total{clamped="true"} 1`)
	assert.Contains(t, body, `ledspeed_led_speed_ms{led="led3"} 1000`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

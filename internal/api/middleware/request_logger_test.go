package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestLogger(t *testing.T) {
	cases := []struct {
		name    string
		handler echo.HandlerFunc
		status  float64
		level   string
	}{
		{
			name:    "success",
			handler: func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
			status:  200,
			level:   "info",
		},
		{
			name:    "client error",
			handler: func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "User not found") },
			status:  404,
			level:   "warn",
		},
		{
			name:    "server error",
			handler: func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError) },
			status:  500,
			level:   "error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := echo.New()
			e.Use(RequestLogger(zerolog.New(&buf)))
			e.GET("/getUser/:id", tc.handler)

			req := httptest.NewRequest(http.MethodGet, "/getUser/42", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			var line map[string]any
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("expected one json log line, got %q: %v", buf.String(), err)
			}
			if line["status"] != tc.status || line["level"] != tc.level {
				t.Fatalf("unexpected log line: %+v", line)
			}
			if line["uri"] != "/getUser/42" || line["method"] != http.MethodGet {
				t.Fatalf("unexpected request fields: %+v", line)
			}
			if int(tc.status) != rec.Code {
				t.Fatalf("logged status %v but responded %d", tc.status, rec.Code)
			}
		})
	}
}

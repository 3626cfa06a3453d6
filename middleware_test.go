package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"pfa/pkg/logger"

	"github.com/gin-gonic/gin"
)

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(requestID(), requestLogger(logger.NewWithWriter(&buf)))
	r.GET("/ping", func(c *gin.Context) {
		reqLogger(c).Info().Msg("inside")
		c.String(http.StatusTeapot, "pong")
	})

	w := performRequest(r, http.MethodGet, "/ping", nil, "", "")
	id := w.Header().Get("X-Request-ID")
	if len(id) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", id)
	}
	out := buf.String()
	if strings.Count(out, id) != 2 || !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/ping"`) {
		t.Fatalf("unexpected log output %s", out)
	}

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = performRequestWith(r, req)
	if w.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("incoming request id should be reused")
	}
}

func TestCORSConfig(t *testing.T) {
	conf := corsConfig([]string{"http://localhost:5173"})
	if err := conf.Validate(); err != nil {
		t.Fatalf("invalid cors config: %v", err)
	}
}

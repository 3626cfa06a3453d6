package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.Info().Str("engine", "donut").Msg("parsed")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if entry["engine"] != "donut" || entry["message"] != "parsed" || entry["time"] == nil {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).With().Str("request_id", "abc").Logger()
	ctx := WithContext(context.Background(), l)
	got := FromContext(ctx)
	got.Info().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"abc"`)) {
		t.Fatalf("context logger lost fields: %s", buf.String())
	}
	if FromContext(context.Background()).GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger for empty context")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG") != zerolog.DebugLevel {
		t.Fatalf("expected debug")
	}
	if parseLevel("") != zerolog.InfoLevel || parseLevel("loud") != zerolog.InfoLevel {
		t.Fatalf("expected info fallback")
	}
}

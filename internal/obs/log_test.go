package obs

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLogRequestStampsServiceField(t *testing.T) {
	logger := Logger()
	origWriter := logger.Writer()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(origWriter)

	LogRequest(map[string]any{"method": "GET", "path": "/ping"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if entry["service"] != serviceName {
		t.Fatalf("expected service %q, got %v", serviceName, entry["service"])
	}

	// An explicit service field wins over the default.
	buf.Reset()
	LogRequest(map[string]any{"service": "upnd-worker"})
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if entry["service"] != "upnd-worker" {
		t.Fatalf("expected caller-supplied service, got %v", entry["service"])
	}
}

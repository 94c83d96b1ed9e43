// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gatherly/internal/logging"
)

// captureLogs routes the global logger into a buffer for the test. Tests using
// it must not run in parallel.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line %q is not JSON: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestAccessLog_Levels(t *testing.T) {
	buf := captureLogs(t)

	tests := []struct {
		status    int
		sleep     time.Duration
		wantLevel string
	}{
		{http.StatusBadRequest, 0, "info"},
		{http.StatusInternalServerError, 0, "error"},
		{http.StatusOK, 20 * time.Millisecond, "warn"},
	}

	for _, tt := range tests {
		handler := RequestID(AccessLog(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(tt.sleep)
			w.WriteHeader(tt.status)
		})))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/places/p1", nil)
		req.Header.Set(CorrelationIDHeader, "chan-7")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		entry := lastLine(t, buf)
		if entry["level"] != tt.wantLevel {
			t.Errorf("status %d: level = %v, want %s", tt.status, entry["level"], tt.wantLevel)
		}
		if entry["status"] != float64(tt.status) {
			t.Errorf("status field = %v, want %d", entry["status"], tt.status)
		}
		if entry["correlation_id"] != "chan-7" {
			t.Errorf("correlation_id = %v, want chan-7", entry["correlation_id"])
		}
		if entry["path"] != "/api/v1/places/p1" {
			t.Errorf("path = %v", entry["path"])
		}
	}
}

//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// Exercises a running server, memory-backed or postgres-backed. Point
// E2E_BASE_URL at it and seed E2E_CITIZEN with enough ducats for a meal.
func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	citizen := envOr("E2E_CITIZEN", "demo-citizen")
	tavern := envOr("E2E_TAVERN", "tavern-1")
	client := &http.Client{Timeout: 20 * time.Second}

	t.Run("create activity rejects unknown type", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/activities", map[string]any{
			"citizen": citizen,
			"type":    "summon_kraken",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", status, string(body))
		}
	})

	t.Run("create activity and read it back", func(t *testing.T) {
		status, createBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/activities", map[string]any{
			"citizen": citizen,
			"type":    "eat_at_tavern",
			"params":  map[string]any{"tavern": tavern},
		})
		if status != http.StatusCreated {
			t.Fatalf("create activity status=%d body=%s", status, string(createBody))
		}
		var created map[string]any
		if err := json.Unmarshal(createBody, &created); err != nil {
			t.Fatalf("unmarshal create response: %v body=%s", err, string(createBody))
		}
		if len(asSlice(created["activities"])) == 0 {
			t.Fatalf("expected a non-empty chain in %s", string(createBody))
		}

		status, listBody, err := doRequest(client, http.MethodGet, baseURL+"/api/citizens/"+citizen+"/activities?limit=20", nil)
		if err != nil {
			t.Fatalf("list activities request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("list activities status=%d body=%s", status, string(listBody))
		}
		var listed map[string]any
		if err := json.Unmarshal(listBody, &listed); err != nil {
			t.Fatalf("unmarshal list response: %v body=%s", err, string(listBody))
		}
		if len(asSlice(listed["activities"])) == 0 {
			t.Fatalf("expected activities for %s", citizen)
		}
	})

	t.Run("kpi endpoint", func(t *testing.T) {
		status, kpiBody, err := doRequest(client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if err != nil {
			t.Fatalf("kpi request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		if err := json.Unmarshal(kpiBody, &kpi); err != nil {
			t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
		}
		if _, ok := kpi["activity_total"]; !ok {
			t.Fatalf("expected activity_total in kpi response")
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

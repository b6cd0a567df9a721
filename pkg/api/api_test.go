package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/rpncalc/pkg/store"
)

func setupTestApp(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s := store.New()
	return New(s, 4), s
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return resp.StatusCode, out
}

func TestEvaluate(t *testing.T) {
	srv, s := setupTestApp(t)

	code, body := doJSON(t, srv, "POST", "/v1/evaluate", `{"expression":"1+2*3"}`)
	require.Equal(t, 200, code)
	require.Equal(t, "evaluations/1", body["name"])
	require.Equal(t, "1 2 3 * +", body["rpn"])
	require.Equal(t, "7", body["result"])
	require.Equal(t, "SUCCEEDED", body["state"])
	require.Equal(t, "infix", body["mode"])

	require.Len(t, s.ListEvaluations(), 1)
}

func TestEvaluateFailureIsRecorded(t *testing.T) {
	srv, _ := setupTestApp(t)

	code, body := doJSON(t, srv, "POST", "/v1/evaluate", `{"expression":"5/(2-2)"}`)
	require.Equal(t, 200, code)
	require.Equal(t, "ERROR", body["rpn"])
	require.Equal(t, "ERROR", body["result"])
	require.Equal(t, "FAILED", body["state"])

	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", body["error"])
	require.Equal(t, "DivisionByZero", errInfo["kind"])
}

func TestEvaluateRPNMode(t *testing.T) {
	srv, _ := setupTestApp(t)

	code, body := doJSON(t, srv, "POST", "/v1/evaluate", `{"expression":"1 2 /","mode":"rpn"}`)
	require.Equal(t, 200, code)
	require.Equal(t, "0.5", body["result"])
	require.Equal(t, "1/2", body["exact"])
}

func TestEvaluateBadRequests(t *testing.T) {
	srv, _ := setupTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty expression", `{"expression":"  "}`},
		{"bad mode", `{"expression":"1","mode":"prefix"}`},
		{"malformed json", `{"expression":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doJSON(t, srv, "POST", "/v1/evaluate", tt.body)
			require.Equal(t, 400, code)
			errInfo := body["error"].(map[string]any)
			require.Equal(t, "INVALID_ARGUMENT", errInfo["status"])
		})
	}
}

func TestEvaluateBatch(t *testing.T) {
	srv, s := setupTestApp(t)

	code, body := doJSON(t, srv, "POST", "/v1/evaluate:batch",
		`{"lines":["1+1","","(1+2","4/2","  "]}`)
	require.Equal(t, 200, code)

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)

	want := []string{"2", "ERROR", "2"}
	for i, r := range results {
		require.Equal(t, want[i], r.(map[string]any)["result"])
	}
	require.Len(t, s.ListEvaluations(), 3)
}

func TestGetListAndClearEvaluations(t *testing.T) {
	srv, _ := setupTestApp(t)

	doJSON(t, srv, "POST", "/v1/evaluate", `{"expression":"9%4"}`)
	doJSON(t, srv, "POST", "/v1/evaluate", `{"expression":"-3"}`)

	code, body := doJSON(t, srv, "GET", "/v1/evaluations/2", "")
	require.Equal(t, 200, code)
	require.Equal(t, "3 u-", body["rpn"])
	require.Equal(t, "-3", body["result"])

	code, body = doJSON(t, srv, "GET", "/v1/evaluations/42", "")
	require.Equal(t, 404, code)
	require.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["status"])

	code, body = doJSON(t, srv, "GET", "/v1/evaluations", "")
	require.Equal(t, 200, code)
	require.Len(t, body["evaluations"], 2)

	code, _ = doJSON(t, srv, "DELETE", "/v1/evaluations", "")
	require.Equal(t, 200, code)

	_, body = doJSON(t, srv, "GET", "/v1/evaluations", "")
	require.Len(t, body["evaluations"], 0)
}

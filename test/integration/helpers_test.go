// Package integration exercises a running `rpncalc serve` over HTTP and gRPC.
//
// Start the server first:
//
//	rpncalc serve --port 8787 --grpc-port 8788
//
// then run `go test ./test/integration/...`. RPNCALC_URL and
// RPNCALC_GRPC_ENDPOINT point the tests elsewhere. Tests are skipped when no
// server answers.
package integration

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

// testServer holds the base URL of a running rpncalc instance for tests.
var testServer string

func init() {
	testServer = os.Getenv("RPNCALC_URL")
	if testServer == "" {
		testServer = "http://localhost:8787"
	}
	// Ensure the URL has a scheme.
	if !strings.HasPrefix(testServer, "http://") && !strings.HasPrefix(testServer, "https://") {
		testServer = "http://" + testServer
	}
}

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// requireServer skips the test when nothing is listening at testServer.
func requireServer(t *testing.T) {
	t.Helper()
	resp, err := httpClient.Get(apiURL("evaluations"))
	if err != nil {
		t.Skipf("rpncalc not reachable at %s: %v", testServer, err)
	}
	resp.Body.Close()
}

// apiURL builds a full URL for the given API path.
func apiURL(path string) string {
	return strings.TrimRight(testServer, "/") + "/v1/" + path
}

// evaluation is the JSON form of a stored evaluation.
type evaluation struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	State      string `json:"state"`
	Expression string `json:"expression"`
	RPN        string `json:"rpn"`
	Result     string `json:"result"`
	Exact      string `json:"exact"`
	Error      *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// postJSON sends body to path and decodes the response into out. It fails
// the test unless the response status equals wantStatus.
func postJSON(t *testing.T, path string, body any, wantStatus int, out any) {
	t.Helper()

	data, _ := json.Marshal(body)
	resp, err := httpClient.Post(apiURL(path), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	decodeResponse(t, resp, wantStatus, out)
}

func getJSON(t *testing.T, path string, wantStatus int, out any) {
	t.Helper()

	resp, err := httpClient.Get(apiURL(path))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	decodeResponse(t, resp, wantStatus, out)
}

func decodeResponse(t *testing.T, resp *http.Response, wantStatus int, out any) {
	t.Helper()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, respBody)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		t.Fatalf("decode error: %v (body: %s)", err, respBody)
	}
}

// evaluate evaluates one expression through the REST API.
func evaluate(t *testing.T, expression, mode string) evaluation {
	t.Helper()
	var ev evaluation
	postJSON(t, "evaluate", map[string]string{"expression": expression, "mode": mode}, http.StatusOK, &ev)
	return ev
}

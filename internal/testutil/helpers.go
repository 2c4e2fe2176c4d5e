// Package testutil carries the assertion and request helpers shared by the
// handler, middleware and view tests, plus sponsor fixtures and a scriptable
// store mock.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

// AssertNoError stops the test on an unexpected error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails when the operation unexpectedly succeeded.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// AssertEqual compares comparable values.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("expected true: %s", msg)
	}
}

func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("expected false: %s", msg)
	}
}

// AssertContains checks for a substring, typically in a response body.
func AssertContains(t *testing.T, s, substring string) {
	t.Helper()
	if !strings.Contains(s, substring) {
		t.Errorf("expected %q to contain %q", s, substring)
	}
}

// AssertLen checks a slice length.
func AssertLen[T any](t *testing.T, slice []T, want int) {
	t.Helper()
	if len(slice) != want {
		t.Errorf("slice length: got %d, want %d", len(slice), want)
	}
}

// AssertEmpty checks a slice is empty.
func AssertEmpty[T any](t *testing.T, slice []T) {
	t.Helper()
	if len(slice) != 0 {
		t.Errorf("expected empty slice, got %d elements", len(slice))
	}
}

// AssertStatusCode fails on a status mismatch and echoes the body, which is
// usually the fastest way to see why a handler bailed out.
func AssertStatusCode(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Errorf("status: got %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

// AssertHeader checks a response header for an exact value.
func AssertHeader(t *testing.T, w *httptest.ResponseRecorder, key, want string) {
	t.Helper()
	if got := w.Header().Get(key); got != want {
		t.Errorf("header %s: got %q, want %q", key, got, want)
	}
}

// AssertJSONResponse checks the status and returns the decoded body for
// further assertions.
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int) map[string]interface{} {
	t.Helper()
	AssertStatusCode(t, w, wantStatus)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v (body: %s)", err, w.Body.String())
	}
	return body
}

// AssertJSONContains checks one key of the JSON response body.
func AssertJSONContains(t *testing.T, w *httptest.ResponseRecorder, key string, want interface{}) {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v (body: %s)", err, w.Body.String())
	}

	got, ok := body[key]
	if !ok {
		t.Errorf("response is missing key %q (body: %s)", key, w.Body.String())
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("key %q: got %v (%T), want %v (%T)", key, got, got, want, want)
	}
}

// NewJSONRequest builds a request with a marshaled JSON body and the
// matching content type.
func NewJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes the response body into T.
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return out
}

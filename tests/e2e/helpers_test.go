//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/storage"

	"github.com/gorilla/websocket"
)

// TestClient wraps http.Client against one dashboard instance
type TestClient struct {
	*http.Client
	t       *testing.T
	baseURL string
	wsURL   string
}

// NewTestClient creates a client talking to the given instance
func NewTestClient(t *testing.T, inst *serverInstance) *TestClient {
	return &TestClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		t:       t,
		baseURL: inst.baseURL,
		wsURL:   inst.wsURL,
	}
}

// Login authenticates as the dashboard admin
func (tc *TestClient) Login(username, password string) error {
	resp, err := tc.PostJSON("/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// Logout ends the admin session
func (tc *TestClient) Logout() error {
	resp, err := tc.PostJSON("/api/v1/auth/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("logout failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// SessionState reports whether the instance sees a valid admin session
func (tc *TestClient) SessionState() (bool, error) {
	resp, err := tc.Get(tc.baseURL + "/api/v1/auth/session")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var result struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode session response: %w", err)
	}
	return result.Authenticated, nil
}

// ListSponsors fetches the current sponsor list
func (tc *TestClient) ListSponsors() ([]domain.SponsorRecord, error) {
	resp, err := tc.Get(tc.baseURL + "/api/v1/sponsors")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list sponsors failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Sponsors []domain.SponsorRecord `json:"sponsors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sponsors response: %w", err)
	}
	return result.Sponsors, nil
}

// AddSponsor submits a new sponsor
func (tc *TestClient) AddSponsor(rec domain.SponsorRecord) error {
	resp, err := tc.PostJSON("/api/v1/sponsors", rec)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("add sponsor failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// DeleteSponsor removes the sponsor at the given position
func (tc *TestClient) DeleteSponsor(index int) error {
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/v1/sponsors/%d", tc.baseURL, index), nil)
	if err != nil {
		return err
	}

	resp, err := tc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete sponsor failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// PostJSON makes a POST request with JSON body
func (tc *TestClient) PostJSON(path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	return tc.Do(req)
}

// WebSocket helpers

// WSClient receives pushed state updates from one instance
type WSClient struct {
	t        *testing.T
	conn     *websocket.Conn
	messages chan []byte
	done     chan struct{}
}

// WatchSponsors connects to the sponsor push channel
func (tc *TestClient) WatchSponsors() (*WSClient, error) {
	return tc.watch("/ws/sponsors")
}

// WatchSession connects to the session push channel
func (tc *TestClient) WatchSession() (*WSClient, error) {
	return tc.watch("/ws/session")
}

func (tc *TestClient) watch(path string) (*WSClient, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.Dial(tc.wsURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}

	wsc := &WSClient{
		t:        tc.t,
		conn:     conn,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}

	go wsc.readLoop()
	return wsc, nil
}

func (wsc *WSClient) readLoop() {
	defer close(wsc.messages)

	for {
		select {
		case <-wsc.done:
			return
		default:
			_, data, err := wsc.conn.ReadMessage()
			if err != nil {
				return
			}

			select {
			case wsc.messages <- data:
			default:
				wsc.t.Log("message channel full, dropping message")
			}
		}
	}
}

// WaitForMessage waits for a pushed payload matching the predicate
func (wsc *WSClient) WaitForMessage(timeout time.Duration, predicate func([]byte) bool) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-wsc.messages:
			if !ok {
				return nil, fmt.Errorf("connection closed while waiting for message")
			}
			if predicate(msg) {
				return msg, nil
			}
		case <-timer.C:
			return nil, fmt.Errorf("timeout waiting for message")
		}
	}
}

// Close closes the WebSocket connection
func (wsc *WSClient) Close() error {
	close(wsc.done)
	return wsc.conn.Close()
}

// Test helpers

// resetState removes the tracked keys through instance A's store so both
// instances converge on an empty dashboard before each test
func resetState(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(testContext, 10*time.Second)
	defer cancel()

	if err := instanceA.store.Remove(ctx, storage.SessionKey); err != nil {
		t.Fatalf("failed to reset session state: %v", err)
	}
	if err := instanceA.store.Remove(ctx, storage.SponsorsKey); err != nil {
		t.Fatalf("failed to reset sponsor state: %v", err)
	}

	// Give LISTEN/NOTIFY a moment to reach the other instance
	time.Sleep(200 * time.Millisecond)
}

// loginAdmin logs in through the given client and fails the test on error
func loginAdmin(t *testing.T, tc *TestClient) {
	t.Helper()
	if err := tc.Login("admin", "admin123"); err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// assertEqual checks if two values are equal
func assertEqual[T comparable](t *testing.T, got, want T, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// testSponsor builds a unique sponsor record
func testSponsor(name string) domain.SponsorRecord {
	return domain.SponsorRecord{
		Name: name,
		Logo: fmt.Sprintf("https://example.com/%s.png", name),
		Link: fmt.Sprintf("https://%s.example.com", name),
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lalmajed/camera-health-digital-twin/config"
	"github.com/lalmajed/camera-health-digital-twin/internal/agent"
	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
	"github.com/lalmajed/camera-health-digital-twin/internal/twinsim"
)

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	sim := twinsim.NewServer()
	backend := httptest.NewServer(sim.Router())

	client := twin.NewClient(backend.URL, 5*time.Second)
	a := agent.New(agent.NewMockProvider(), client, agent.Config{Provider: "mock"})
	sessions := agent.NewSessionManager(time.Hour)

	cfg := config.Load()
	srv := NewServer(a, sessions, nil, cfg)
	api := httptest.NewServer(srv.Handler())

	return api, func() {
		api.Close()
		backend.Close()
	}
}

func TestAskEndpoint(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]string{
		"question": "How is the city doing on 2025-11-10?",
	})
	resp, err := http.Post(api.URL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /ask failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		Tool      string `json:"tool"`
		Category  string `json:"category"`
		Narrative string `json:"narrative"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}

	if got.Tool != twin.ToolCityTotals {
		t.Errorf("tool = %q, want %q", got.Tool, twin.ToolCityTotals)
	}
	if got.Category != "city_totals" {
		t.Errorf("category = %q, want city_totals", got.Category)
	}
	if !strings.Contains(got.Narrative, "2025-11-10") {
		t.Errorf("narrative does not mention the day: %q", got.Narrative)
	}
	if got.SessionID == "" {
		t.Error("expected a session_id in the response")
	}
}

func TestAskRequiresQuestion(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Post(api.URL+"/api/v1/ask", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST /ask failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAskDeclinesOffTopicQuestions(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]string{"question": "tell me a joke"})
	resp, err := http.Post(api.URL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /ask failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		Tool      string `json:"tool"`
		Narrative string `json:"narrative"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if got.Tool != "none" {
		t.Errorf("tool = %q, want none", got.Tool)
	}
	if !strings.Contains(got.Narrative, "can't answer") {
		t.Errorf("expected a declined narrative, got %q", got.Narrative)
	}
}

func TestSessionLifecycle(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Post(api.URL+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sessions failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decoding session failed: %v", err)
	}
	resp.Body.Close()
	if session.ID == "" {
		t.Fatal("expected a session ID")
	}

	resp, err = http.Get(api.URL + "/api/v1/sessions/" + session.ID)
	if err != nil {
		t.Fatalf("GET session failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d, want 200", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/v1/sessions/"+session.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE session failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(api.URL + "/api/v1/sessions/" + session.ID)
	if err != nil {
		t.Fatalf("GET deleted session failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", resp.StatusCode)
	}
}

func TestCapabilitiesListsAllTools(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Get(api.URL + "/api/v1/capabilities")
	if err != nil {
		t.Fatalf("GET /capabilities failed: %v", err)
	}
	defer resp.Body.Close()

	var got struct {
		Tools []struct {
			Name   string   `json:"name"`
			Params []string `json:"params"`
		} `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding capabilities failed: %v", err)
	}

	if len(got.Tools) != 6 {
		t.Fatalf("expected 6 tools, got %d", len(got.Tools))
	}
	names := make(map[string]bool)
	for _, tool := range got.Tools {
		names[tool.Name] = true
	}
	for _, want := range twin.Tools() {
		if !names[want] {
			t.Errorf("capabilities missing tool %s", want)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Get(api.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestChatWebSocket(t *testing.T) {
	api, cleanup := newTestServer(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(api.URL, "http") + "/api/v1/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"question": "What is the status of RUHSM001 on 2025-11-10?"}); err != nil {
		t.Fatalf("writing question failed: %v", err)
	}

	var got struct {
		Tool      string `json:"tool"`
		Category  string `json:"category"`
		Narrative string `json:"narrative"`
		SessionID string `json:"session_id"`
		Error     string `json:"error"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading answer failed: %v", err)
	}

	if got.Error != "" {
		t.Fatalf("unexpected error: %s", got.Error)
	}
	if got.Tool != twin.ToolSiteDayStatus {
		t.Errorf("tool = %q, want %q", got.Tool, twin.ToolSiteDayStatus)
	}
	if !strings.Contains(got.Narrative, "RUHSM001") {
		t.Errorf("narrative does not mention the site: %q", got.Narrative)
	}
	if got.SessionID == "" {
		t.Error("expected a session_id")
	}
}

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stock-assistant/internal/agents"
	"stock-assistant/internal/metrics"
	"stock-assistant/internal/models"
	"stock-assistant/internal/tools"
)

// echoModel calls get_stock_price for questions mentioning "price", plots for
// "plot", and otherwise answers directly. Follow-up queries echo the tool result.
type echoModel struct{}

func (m *echoModel) Model() string { return "echo" }

func (m *echoModel) Complete(ctx context.Context, history []models.Message, available []*tools.Descriptor) (models.Reply, error) {
	last := history[len(history)-1]
	if last.Role == models.RoleFunction {
		return models.Reply{Content: "The answer is " + last.Content}, nil
	}
	q := strings.ToLower(last.Content)
	switch {
	case strings.Contains(q, "plot"):
		return models.Reply{Call: &models.ToolInvocation{ID: "c1", Name: "plot_stock_price", Arguments: json.RawMessage(`{"ticker":"TSLA"}`)}}, nil
	case strings.Contains(q, "price"):
		return models.Reply{Call: &models.ToolInvocation{ID: "c1", Name: "get_stock_price", Arguments: json.RawMessage(`{"ticker":"MSFT"}`)}}, nil
	case strings.Contains(q, "broken"):
		return models.Reply{Call: &models.ToolInvocation{ID: "c1", Name: "get_stock_price", Arguments: json.RawMessage(`{}`)}}, nil
	}
	return models.Reply{Content: "Hello from the assistant"}, nil
}

type staticSource struct{}

func (staticSource) Closes(ctx context.Context, ticker string) (models.PriceSeries, error) {
	return models.PriceSeries{Ticker: ticker, Dates: make([]time.Time, 2), Values: []float64{100, 101.5}}, nil
}

type fileRenderer struct{ path string }

func (r fileRenderer) Render(ctx context.Context, ticker string) (string, error) {
	return r.path, os.WriteFile(r.path, []byte("\x89PNG fake"), 0644)
}

func newTestServer(t *testing.T) (*httptest.Server, *http.Client, string) {
	t.Helper()
	chartPath := filepath.Join(t.TempDir(), "stock_price.png")
	reg, err := tools.NewDefaultRegistry(staticSource{}, fileRenderer{path: chartPath})
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.NewMetrics()
	orch := agents.NewOrchestrator(&echoModel{}, reg, zerolog.Nop(), agents.WithMetrics(m))
	srv := NewServer("127.0.0.1:0", orch, m, chartPath, zerolog.Nop())

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return ts, &http.Client{Jar: jar}, chartPath
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func ask(t *testing.T, client *http.Client, base, q string) string {
	t.Helper()
	resp, err := client.PostForm(base+"/ask", url.Values{"q": {q}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	return body(t, resp)
}

func TestIndex_EmptySession(t *testing.T) {
	ts, client, _ := newTestServer(t)

	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	for _, want := range []string{"<title>Stock Analysis Chatbot Assistant</title>", "Your question:", `action="/ask"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "Conversation") {
		t.Error("empty session should not render a transcript")
	}
}

func TestAsk_ToolAnswerAndTranscript(t *testing.T) {
	ts, client, _ := newTestServer(t)

	page := ask(t, client, ts.URL, "What is the price of MSFT?")
	if !strings.Contains(page, "The answer is 101.5") {
		t.Errorf("answer not shown:\n%s", page)
	}
	if !strings.Contains(page, "get_stock_price") {
		t.Error("transcript should show the tool call")
	}

	// The session persists across requests via the cookie
	page = ask(t, client, ts.URL, "hi")
	if !strings.Contains(page, "What is the price of MSFT?") || !strings.Contains(page, "Hello from the assistant") {
		t.Error("transcript lost between turns")
	}
}

func TestAsk_PlotShowsImage(t *testing.T) {
	ts, client, chartPath := newTestServer(t)

	page := ask(t, client, ts.URL, "Plot TSLA")
	if !strings.Contains(page, `<img src="/chart.png?t=`) {
		t.Errorf("chart not shown:\n%s", page)
	}

	resp, err := client.Get(ts.URL + "/chart.png")
	if err != nil {
		t.Fatal(err)
	}
	data := body(t, resp)
	want, _ := os.ReadFile(chartPath)
	if data != string(want) {
		t.Error("served chart differs from file")
	}
}

func TestAsk_ErrorIsShown(t *testing.T) {
	ts, client, _ := newTestServer(t)

	page := ask(t, client, ts.URL, "broken question")
	if !strings.Contains(page, `class="msg error"`) || !strings.Contains(page, "missing required argument") {
		t.Errorf("error not shown:\n%s", page)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	ts, client, _ := newTestServer(t)

	page := ask(t, client, ts.URL, "  ")
	if !strings.Contains(page, "question cannot be empty") {
		t.Errorf("validation error not shown:\n%s", page)
	}
}

func TestReset_ClearsSession(t *testing.T) {
	ts, client, _ := newTestServer(t)

	ask(t, client, ts.URL, "hi")
	resp, err := client.PostForm(ts.URL+"/reset", nil)
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	if strings.Contains(page, "Hello from the assistant") {
		t.Error("transcript survived reset")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ts, alice, _ := newTestServer(t)
	jar, _ := cookiejar.New(nil)
	bob := &http.Client{Jar: jar}

	ask(t, alice, ts.URL, "What is the price of MSFT?")

	resp, err := bob.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body(t, resp), "MSFT") {
		t.Error("second browser sees first browser's conversation")
	}
}

func TestChart_NotFoundBeforeFirstPlot(t *testing.T) {
	ts, client, _ := newTestServer(t)

	resp, err := client.Get(ts.URL + "/chart.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, client, _ := newTestServer(t)
	ask(t, client, ts.URL, "hi")

	resp, err := client.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if health.Status != "ok" || health.Sessions != 1 {
		t.Errorf("health = %+v", health)
	}

	resp, err = client.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body(t, resp), `stockbot_turns_total{outcome="answer"} 1`) {
		t.Error("metrics endpoint missing turn counter")
	}
}

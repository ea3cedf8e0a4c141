package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cardapiolab/menugrab/classify"
	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/extract"
	"github.com/cardapiolab/menugrab/models"
	"github.com/cardapiolab/menugrab/transport"
)

// stubTransport is a scripted cascade member recording its invocations.
type stubTransport struct {
	name string
	sd   func() *models.ScrapedData
	err  error
	log  *[]string
}

func (s *stubTransport) Name() string { return s.name }

func (s *stubTransport) Fetch(ctx context.Context, req *transport.Request) (*models.ScrapedData, error) {
	if s.log != nil {
		*s.log = append(*s.log, s.name)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.sd(), nil
}

func candidateWith(method string, names ...string) func() *models.ScrapedData {
	return func() *models.ScrapedData {
		sd := models.NewScrapedData(method)
		for _, n := range names {
			sd.AddItem(models.MenuItem{Name: n, Category: "Pratos"})
		}
		return sd
	}
}

func newTestOrchestrator(t *testing.T, goodEnough int, trs ...transport.Transport) *Orchestrator {
	t.Helper()
	static := transport.NewStaticHTML(
		transport.NewFetcher(time.Second),
		extract.New(classify.New(true)),
		goodEnough,
	)
	o := &Orchestrator{
		transports: trs,
		static:     static,
		memory:     NewHostMemory(time.Hour),
		cfg:        config.ScraperConfig{GoodEnoughItems: goodEnough},
	}
	t.Cleanup(o.Close)
	return o
}

func TestScrape_BestCandidateWins(t *testing.T) {
	three := &stubTransport{name: "a",
		sd: candidateWith("a", "Prato Um", "Prato Dois", "Prato Três")}
	seven := &stubTransport{name: "b",
		sd: candidateWith("b", "P1", "P2", "P3", "P4", "P5", "P6", "P7")}

	o := newTestOrchestrator(t, 100, three, seven)
	sd, err := o.Scrape(context.Background(), "https://food.example.com/delivery/cantina")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if sd.ItemCount() != 7 {
		t.Errorf("kept candidate with %d items, want 7", sd.ItemCount())
	}
	if sd.ExtractionMethod != "b" {
		t.Errorf("ExtractionMethod = %q, want b", sd.ExtractionMethod)
	}
}

func TestScrape_EarlyStop(t *testing.T) {
	var log []string
	first := &stubTransport{name: "a", log: &log,
		sd: candidateWith("a", "P1", "P2", "P3", "P4", "P5")}
	second := &stubTransport{name: "b", log: &log,
		sd: candidateWith("b", "never reached")}

	o := newTestOrchestrator(t, 5, first, second)
	sd, err := o.Scrape(context.Background(), "https://food.example.com/delivery/x")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if sd.ItemCount() != 5 {
		t.Errorf("got %d items", sd.ItemCount())
	}
	if len(log) != 1 || log[0] != "a" {
		t.Errorf("transports called = %v, want only a", log)
	}
}

func TestScrape_MissingURL(t *testing.T) {
	var log []string
	stub := &stubTransport{name: "a", log: &log, sd: candidateWith("a", "Prato")}

	o := newTestOrchestrator(t, 5, stub)
	_, err := o.Scrape(context.Background(), "   ")

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
	if len(log) != 0 {
		t.Errorf("transports were called for a missing URL: %v", log)
	}
}

func TestScrape_ClosedWarning(t *testing.T) {
	closed := &stubTransport{name: "a", sd: func() *models.ScrapedData {
		sd := candidateWith("a", "Feijoada Completa", "Frango Grelhado")()
		sd.IsClosed = true
		sd.NextOpening = "Abre às 18:00"
		return sd
	}}

	o := newTestOrchestrator(t, 5, closed)
	sd, err := o.Scrape(context.Background(), "https://food.example.com/delivery/casa")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !sd.IsClosed {
		t.Fatal("IsClosed lost in finalize")
	}
	if !strings.Contains(sd.Warning, "Abre às 18:00") {
		t.Errorf("Warning = %q, want next-opening text included", sd.Warning)
	}

	// Without a reopening time the warning says it is not available.
	closed.sd = func() *models.ScrapedData {
		sd := candidateWith("a", "Feijoada Completa")()
		sd.IsClosed = true
		return sd
	}
	sd, err = o.Scrape(context.Background(), "https://food.example.com/delivery/casa2")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !strings.Contains(sd.Warning, "não disponível") {
		t.Errorf("Warning = %q, want availability phrase", sd.Warning)
	}
}

func TestScrape_EmptyMenuWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Sem Menu</title></head><body><p>nada aqui</p></body></html>`))
	}))
	defer srv.Close()

	empty := &stubTransport{name: "a", sd: candidateWith("a")}

	o := newTestOrchestrator(t, 5, empty)
	sd, err := o.Scrape(context.Background(), srv.URL+"/delivery/vazio")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if sd.ItemCount() != 0 {
		t.Fatalf("got %d items, want 0", sd.ItemCount())
	}
	if !strings.Contains(sd.Warning, "dinamicamente") {
		t.Errorf("Warning = %q, want dynamic-rendering caveat", sd.Warning)
	}
	if sd.RestaurantImage == "" {
		t.Error("placeholder image not applied")
	}
}

func TestScrape_MemoryPromotion(t *testing.T) {
	var log []string
	failing := &stubTransport{name: "a", log: &log, err: errors.New("blocked")}
	working := &stubTransport{name: "b", log: &log,
		sd: candidateWith("b", "P1", "P2", "P3", "P4", "P5")}

	o := newTestOrchestrator(t, 5, failing, working)

	url := "https://food.example.com/delivery/lembrado"
	if _, err := o.Scrape(context.Background(), url); err != nil {
		t.Fatalf("first Scrape: %v", err)
	}
	if _, err := o.Scrape(context.Background(), url); err != nil {
		t.Fatalf("second Scrape: %v", err)
	}

	want := []string{"a", "b", "b"}
	if len(log) != len(want) {
		t.Fatalf("call log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("call log = %v, want %v", log, want)
		}
	}
}

func TestScrape_Idempotence(t *testing.T) {
	page := `<html><head><title>Cantina da Vila - Cardápio</title></head><body>
	<section class="menu-category"><h2>Massas</h2>
		<div class="dish-card"><span class="dish-name">Lasanha à Bolonhesa</span>
			<span class="dish-price">R$ 34,50</span></div>
	</section></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	static := transport.NewStaticHTML(
		transport.NewFetcher(time.Second), extract.New(classify.New(true)), 1)
	o := &Orchestrator{
		transports: []transport.Transport{static},
		static:     static,
		memory:     NewHostMemory(time.Hour),
		cfg:        config.ScraperConfig{GoodEnoughItems: 1},
	}
	t.Cleanup(o.Close)

	first, err := o.Scrape(context.Background(), srv.URL+"/delivery/cantina-da-vila")
	if err != nil {
		t.Fatalf("first Scrape: %v", err)
	}
	second, err := o.Scrape(context.Background(), srv.URL+"/delivery/cantina-da-vila")
	if err != nil {
		t.Fatalf("second Scrape: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("results differ between runs:\n%s\n%s", a, b)
	}
}

func TestPlaceholderName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://food.example.com/delivery/cantina-da-vila", "Cantina Da Vila"},
		{"https://food.example.com/delivery/boteco/9b2d1a40-1234-4cde-8f00-aabbccddeeff", "Boteco"},
		{"https://food.example.com/", "food.example.com"},
	}
	for _, tt := range tests {
		if got := placeholderName(tt.url); got != tt.want {
			t.Errorf("placeholderName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEmbedded_JSONScriptTag(t *testing.T) {
	page := `<html><body>
	<div id="root"></div>
	<script type="application/json">{
		"props": {"pageProps": {"restaurant": {
			"name": "Cantina da Vila",
			"logo": "https://cdn.example.com/logo.png",
			"closed": true,
			"next_opening": "Abre às 18:00",
			"categories": [
				{"name": "Massas", "dishes": [
					{"name": "Lasanha à Bolonhesa", "price": 34.5},
					{"name": "Nhoque de Batata", "price": 29.9}
				]}
			]
		}}}
	}</script>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	tr := NewEmbedded(NewFetcher(time.Second), testExtractorT())
	sd, err := tr.Fetch(context.Background(), &Request{URL: srv.URL + "/delivery/cantina"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if sd.ExtractionMethod != "embedded-json" {
		t.Errorf("ExtractionMethod = %q", sd.ExtractionMethod)
	}
	if sd.RestaurantName != "Cantina da Vila" {
		t.Errorf("RestaurantName = %q", sd.RestaurantName)
	}
	if !sd.IsClosed || sd.NextOpening != "Abre às 18:00" {
		t.Errorf("closed state = %v / %q", sd.IsClosed, sd.NextOpening)
	}
	if len(sd.MenuItems) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(sd.MenuItems), sd.MenuItems)
	}
	if sd.MenuItems[0].Category != "Massas" {
		t.Errorf("category = %q", sd.MenuItems[0].Category)
	}
}

func TestEmbedded_InlineStateAssignment(t *testing.T) {
	page := `<html><body>
	<script>
	window.__INITIAL_STATE__ = {"merchant": {"name": "Boteco Central",
		"products": [{"name": "Porção de Mandioca", "price": 18}]}};
	window.dataLayer = [];
	</script>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	tr := NewEmbedded(NewFetcher(time.Second), testExtractorT())
	sd, err := tr.Fetch(context.Background(), &Request{URL: srv.URL + "/delivery/boteco"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if sd.RestaurantName != "Boteco Central" {
		t.Errorf("RestaurantName = %q", sd.RestaurantName)
	}
	if len(sd.MenuItems) != 1 || sd.MenuItems[0].Name != "Porção de Mandioca" {
		t.Fatalf("items = %+v", sd.MenuItems)
	}
}

func TestEmbedded_NoBootstrap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>página estática</p></body></html>`))
	}))
	defer srv.Close()

	tr := NewEmbedded(NewFetcher(time.Second), testExtractorT())
	if _, err := tr.Fetch(context.Background(), &Request{URL: srv.URL}); !errors.Is(err, errNoBootstrap) {
		t.Fatalf("err = %v, want errNoBootstrap", err)
	}
}

func TestTrimToBalanced(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 1}; doSomething();`, `{"a": 1}`},
		{`{"a": {"b": "}"}} trailing`, `{"a": {"b": "}"}}`},
		{`{"a": "esc \" quote"}`, `{"a": "esc \" quote"}`},
	}
	for _, tt := range tests {
		if got := trimToBalanced(tt.in); got != tt.want {
			t.Errorf("trimToBalanced(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

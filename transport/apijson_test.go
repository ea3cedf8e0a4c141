package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardapiolab/menugrab/classify"
	"github.com/cardapiolab/menugrab/extract"
)

const testMerchantID = "9b2d1a40-1234-4cde-8f00-aabbccddeeff"

func testExtractorT() *extract.Extractor {
	return extract.New(classify.New(true))
}

func TestAPIJSON_NoIdentifier(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tr := NewAPIJSON(NewFetcher(time.Second), testExtractorT())
	_, err := tr.Fetch(context.Background(), &Request{URL: srv.URL + "/delivery/cantina-da-vila"})
	if !errors.Is(err, errNoIdentifier) {
		t.Fatalf("err = %v, want errNoIdentifier", err)
	}
	if calls.Load() != 0 {
		t.Errorf("made %d requests, want none", calls.Load())
	}
}

func TestAPIJSON_GuessesEndpoints(t *testing.T) {
	menu := `{
		"name": "Cantina da Vila",
		"categories": [
			{"name": "Massas", "dishes": [
				{"name": "Lasanha à Bolonhesa", "price": 34.5},
				{"name": "Nhoque de Batata", "price": 29.9}
			]}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/restaurants/"+testMerchantID+"/menu" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(menu))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tr := NewAPIJSON(NewFetcher(time.Second), testExtractorT())
	sd, err := tr.Fetch(context.Background(),
		&Request{URL: srv.URL + "/delivery/cantina-da-vila/" + testMerchantID})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if sd.ExtractionMethod != "api-json" {
		t.Errorf("ExtractionMethod = %q", sd.ExtractionMethod)
	}
	if sd.RestaurantName != "Cantina da Vila" {
		t.Errorf("RestaurantName = %q", sd.RestaurantName)
	}
	if len(sd.MenuItems) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(sd.MenuItems), sd.MenuItems)
	}
	if sd.MenuItems[0].Category != "Massas" {
		t.Errorf("category = %q", sd.MenuItems[0].Category)
	}
}

func TestAPIJSON_AllEndpointsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	tr := NewAPIJSON(NewFetcher(time.Second), testExtractorT())
	_, err := tr.Fetch(context.Background(),
		&Request{URL: srv.URL + "/delivery/x/" + testMerchantID})
	if err == nil {
		t.Fatal("want error when every endpoint 404s")
	}
}

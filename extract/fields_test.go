package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func cardFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	card := doc.Find("body > *").First()
	if card.Length() == 0 {
		t.Fatal("fixture has no root element")
	}
	return card
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"explicit dish-name class",
			`<div><span class="dish-name">Feijoada Completa</span><h3>Ignored</h3></div>`,
			"Feijoada Completa",
		},
		{
			"title class substring",
			`<div><p class="card-title-lg">  Frango   Grelhado </p></div>`,
			"Frango Grelhado",
		},
		{
			"heading fallback",
			`<div><h4>Pizza Margherita</h4></div>`,
			"Pizza Margherita",
		},
		{
			"nothing matches",
			`<div><span>plain</span></div>`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(cardFromHTML(t, tt.html)); got != tt.want {
				t.Errorf("ExtractName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	card := cardFromHTML(t,
		`<div><span class="dish-description">Arroz, feijão e farofa</span></div>`)
	if got := ExtractDescription(card); got != "Arroz, feijão e farofa" {
		t.Errorf("ExtractDescription() = %q", got)
	}

	empty := cardFromHTML(t, `<div><b>no desc here</b></div>`)
	if got := ExtractDescription(empty); got != "" {
		t.Errorf("ExtractDescription() = %q, want empty", got)
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"price class with currency",
			`<div><span class="dish-price">R$ 32,90</span></div>`,
			"R$ 32,90",
		},
		{
			"data-price attribute",
			`<div><span data-price="25.50"></span></div>`,
			"25.50",
		},
		{
			"rejects text without digits or currency",
			`<div><span class="price">a combinar</span></div>`,
			"",
		},
		{
			"skips bogus match, takes next",
			`<div><span class="price-label">grátis</span><span class="price">R$ 10,00</span></div>`,
			"R$ 10,00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPrice(cardFromHTML(t, tt.html)); got != tt.want {
				t.Errorf("ExtractPrice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractImage(t *testing.T) {
	card := cardFromHTML(t, `<div>
		<img class="icon" src="/icon.svg">
		<img class="dish-photo" src="https://cdn.example.com/feijoada.jpg">
	</div>`)
	if got := ExtractImage(card); got != "https://cdn.example.com/feijoada.jpg" {
		t.Errorf("ExtractImage() = %q, want dish photo", got)
	}

	fallback := cardFromHTML(t, `<div><img src="/any.png"></div>`)
	if got := ExtractImage(fallback); got != "/any.png" {
		t.Errorf("ExtractImage() fallback = %q, want /any.png", got)
	}

	none := cardFromHTML(t, `<div><span>no image</span></div>`)
	if got := ExtractImage(none); got != "" {
		t.Errorf("ExtractImage() = %q, want empty", got)
	}
}

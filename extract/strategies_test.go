package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/cardapiolab/menugrab/classify"
	"github.com/cardapiolab/menugrab/models"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func testExtractor() *Extractor {
	return New(classify.New(true))
}

const structuredPage = `<html>
<head><title>Casa do Norte - Cardápio e Delivery</title></head>
<body>
<h1 class="restaurant-name">Casa do Norte</h1>
<img class="restaurant-logo" src="https://cdn.example.com/logo.png">
<section class="menu-category">
	<h2>Pratos Executivos</h2>
	<div class="dish-card">
		<span class="dish-name">Feijoada Completa</span>
		<span class="dish-description">Arroz, couve e farofa</span>
		<span class="dish-price">R$ 32,90</span>
		<img class="dish-photo" src="/feijoada.jpg">
	</div>
	<div class="dish-card">
		<span class="dish-name">Frango Grelhado</span>
		<span class="dish-price">R$ 28,00</span>
	</div>
</section>
<section class="menu-category">
	<h2>Bebidas</h2>
	<div class="dish-card">
		<span class="dish-name">Suco de Laranja</span>
		<span class="dish-price">R$ 8,00</span>
	</div>
</section>
</body></html>`

func TestFromDocument_StructuredCategories(t *testing.T) {
	sd := testExtractor().FromDocument(docFromHTML(t, structuredPage), "https://example.com/r")

	if sd.RestaurantName != "Casa do Norte" {
		t.Errorf("RestaurantName = %q", sd.RestaurantName)
	}
	if sd.RestaurantImage != "https://cdn.example.com/logo.png" {
		t.Errorf("RestaurantImage = %q", sd.RestaurantImage)
	}
	if sd.ExtractionMethod != "structured-categories" {
		t.Errorf("ExtractionMethod = %q", sd.ExtractionMethod)
	}
	if len(sd.MenuItems) != 3 {
		t.Fatalf("got %d items, want 3: %+v", len(sd.MenuItems), sd.MenuItems)
	}

	first := sd.MenuItems[0]
	if first.Name != "Feijoada Completa" || first.Category != "Pratos Executivos" {
		t.Errorf("first item = %+v", first)
	}
	if first.Price != "R$ 32,90" || first.Description != "Arroz, couve e farofa" {
		t.Errorf("first item fields = %+v", first)
	}

	wantCats := []string{"Pratos Executivos", "Bebidas"}
	if len(sd.MenuCategories) != len(wantCats) {
		t.Fatalf("categories = %v, want %v", sd.MenuCategories, wantCats)
	}
	for i, c := range wantCats {
		if sd.MenuCategories[i] != c {
			t.Errorf("categories[%d] = %q, want %q", i, sd.MenuCategories[i], c)
		}
	}
}

func TestFromDocument_FlatCards(t *testing.T) {
	page := `<html><head><title>Lanchonete da Praça | Delivery</title></head><body>
	<div class="product-card">
		<h3>X-Salada Especial</h3>
		<span class="price">R$ 19,90</span>
	</div>
	<div class="product-card">
		<h3>Misto Quente</h3>
	</div>
	</body></html>`

	sd := testExtractor().FromDocument(docFromHTML(t, page), "https://example.com/r")

	if sd.ExtractionMethod != "dish-cards" {
		t.Errorf("ExtractionMethod = %q", sd.ExtractionMethod)
	}
	if len(sd.MenuItems) != 2 {
		t.Fatalf("got %d items, want 2", len(sd.MenuItems))
	}
	for _, it := range sd.MenuItems {
		if it.Category != GenericCategory {
			t.Errorf("item %q category = %q, want %q", it.Name, it.Category, GenericCategory)
		}
	}
	if sd.RestaurantName != "Lanchonete da Praça" {
		t.Errorf("RestaurantName = %q, want title with suffix stripped", sd.RestaurantName)
	}
}

func TestFromDocument_DataAttributes(t *testing.T) {
	page := `<html><body>
	<ul>
		<li class="offer-item"><a data-name="Marmita Fitness de Frango"></a>
			<span class="price">R$ 22,00</span></li>
		<li class="offer-item"><a data-name="ab"></a></li>
		<li class="offer-item"><a data-name="R$ 10 de desconto"></a></li>
	</ul>
	</body></html>`

	sd := testExtractor().FromDocument(docFromHTML(t, page), "https://example.com/r")

	if sd.ExtractionMethod != "data-attributes" {
		t.Errorf("ExtractionMethod = %q", sd.ExtractionMethod)
	}
	if len(sd.MenuItems) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(sd.MenuItems), sd.MenuItems)
	}
	it := sd.MenuItems[0]
	if it.Name != "Marmita Fitness de Frango" || it.Price != "R$ 22,00" {
		t.Errorf("item = %+v", it)
	}
}

func TestFromDocument_HeadingFallback(t *testing.T) {
	page := `<html><body>
	<article><h3>Torta de Limão</h3><span class="price">R$ 12,00</span></article>
	<article><h3>Ver mais</h3></article>
	</body></html>`

	sd := testExtractor().FromDocument(docFromHTML(t, page), "https://example.com/r")

	if sd.ExtractionMethod != "headings" {
		t.Errorf("ExtractionMethod = %q", sd.ExtractionMethod)
	}
	if len(sd.MenuItems) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(sd.MenuItems), sd.MenuItems)
	}
	if sd.MenuItems[0].Name != "Torta de Limão" {
		t.Errorf("item name = %q", sd.MenuItems[0].Name)
	}
	if sd.MenuItems[0].Price != "R$ 12,00" {
		t.Errorf("item price = %q", sd.MenuItems[0].Price)
	}
}

func TestFromDocument_ClosedDetection(t *testing.T) {
	page := `<html><body>
	<div class="merchant-status">Loja fechada</div>
	<div class="merchant-status-message">Abre às 18:00</div>
	</body></html>`

	sd := testExtractor().FromDocument(docFromHTML(t, page), "https://example.com/r")

	if !sd.IsClosed {
		t.Fatal("IsClosed = false, want true")
	}
	if sd.NextOpening != "Abre às 18:00" {
		t.Errorf("NextOpening = %q", sd.NextOpening)
	}
}

func TestFromDocument_EmptyPage(t *testing.T) {
	sd := testExtractor().FromDocument(docFromHTML(t, `<html><body><p>nada</p></body></html>`), "u")
	if len(sd.MenuItems) != 0 {
		t.Errorf("got %d items, want 0", len(sd.MenuItems))
	}
	if len(sd.MenuCategories) != 0 {
		t.Errorf("got categories %v, want none", sd.MenuCategories)
	}
}

func TestFilterInPlace(t *testing.T) {
	sd := models.NewScrapedData("browser")
	sd.MenuItems = []models.MenuItem{
		{Name: "Feijoada Completa", Category: "Pratos"},
		{Name: "Ver mais", Category: "Pratos"},
		{Name: "Suco de Laranja", Category: ""},
	}

	testExtractor().FilterInPlace(sd)

	if len(sd.MenuItems) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(sd.MenuItems), sd.MenuItems)
	}
	if sd.MenuItems[1].Category != GenericCategory {
		t.Errorf("empty category not defaulted: %+v", sd.MenuItems[1])
	}
	wantCats := []string{"Pratos", GenericCategory}
	for i, c := range wantCats {
		if sd.MenuCategories[i] != c {
			t.Errorf("categories[%d] = %q, want %q", i, sd.MenuCategories[i], c)
		}
	}
}

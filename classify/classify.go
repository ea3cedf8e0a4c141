// Package classify decides whether a short text string plausibly names a
// menu dish. It is a deny-list/allow-list hybrid: known UI, boilerplate and
// status phrases are rejected first, then capitalization patterns and food
// vocabulary accept, with a deliberately permissive length fallback at the
// end. False positives are tolerated; false negatives are what the fallback
// exists to avoid.
package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// exclusionPatterns reject text that is clearly not a dish name. Checked
// before any inclusion rule, so a string matching both is rejected.
var exclusionPatterns = []*regexp.Regexp{
	// Currency-prefixed strings and anything starting with a digit.
	regexp.MustCompile(`^\s*R?\$`),
	regexp.MustCompile(`^\d`),

	// UI action words, Portuguese and English.
	regexp.MustCompile(`(?i)^(ver mais|ver tudo|mostrar mais|view more|show more|see all)`),
	regexp.MustCompile(`(?i)^(fechar|close|voltar|back|ok|cancelar|cancel)$`),
	regexp.MustCompile(`(?i)^(adicionar|remover|editar|excluir|salvar|add|remove|edit|delete|save)\b`),

	// Field labels.
	regexp.MustCompile(`(?i)^(nome|pre[çc]o|descri[çc][ãa]o|categoria|quantidade|name|price|description|category|quantity)s?:?$`),

	// Platform and app boilerplate.
	regexp.MustCompile(`(?i)(baixe o (app|aplicativo)|pe[çc]a (pelo|no) app|download the app|fa[çc]a seu pedido)`),
	regexp.MustCompile(`(?i)^(entrar|cadastre-se|minha conta|meus pedidos|sacola|carrinho|login|sign ?up|sign ?in|cart)$`),

	// Social networks.
	regexp.MustCompile(`(?i)^(facebook|instagram|twitter|whatsapp|tiktok|youtube|linkedin)$`),

	// Footer and legal links.
	regexp.MustCompile(`(?i)(termos( de uso)?|privacidade|pol[íi]tica|ajuda|contato|fale conosco|terms|privacy|help|contact)`),
	regexp.MustCompile(`(?i)(todos os direitos|direitos reservados|all rights reserved|©|copyright)`),

	// Ratings, minimum order, opening hours, closed status.
	regexp.MustCompile(`(?i)(avalia[çc][ãa]o|rating):?\s*\d`),
	regexp.MustCompile(`(?i)pedido m[íi]nimo`),
	regexp.MustCompile(`(?i)(hor[áa]rio|aberto (das|de)|abre [àa]s|opens at)`),
	regexp.MustCompile(`(?i)(fechado|fechada|loja fechada|closed)`),
	regexp.MustCompile(`(?i)(entrega|taxa de entrega|frete|delivery fee|tempo de entrega)`),
}

// navigationLabels are institutional labels that slip through the pattern
// checks on some layouts.
var navigationLabels = map[string]struct{}{
	"início":              {},
	"inicio":              {},
	"home":                {},
	"cardápio":            {},
	"cardapio":            {},
	"menu":                {},
	"sobre":               {},
	"sobre nós":           {},
	"avaliações":          {},
	"promoções":           {},
	"destaques":           {},
	"mais pedidos":        {},
	"pedidos":             {},
	"informações":         {},
	"formas de pagamento": {},
}

// inclusionPatterns accept dish-like capitalization: "Frango Grelhado",
// "Marmita grande com feijão".
var inclusionPatterns = []*regexp.Regexp{
	// Two or more capitalized words.
	regexp.MustCompile(`^[A-ZÀ-Ú][a-zà-ú]+(?:\s+(?:[A-ZÀ-Ú][a-zà-ú]+|de|da|do|com|e|ao|à))+$`),
	// Capitalized word followed by lowercase words.
	regexp.MustCompile(`^[A-ZÀ-Ú][a-zà-ú]+(?:\s+[a-zà-ú]+)+$`),
}

// foodVocabulary accepts lowercase or oddly cased strings that still talk
// about food. Substring match over the lowercased input.
var foodVocabulary = []string{
	"prato", "marmita", "marmitex", "combo", "refeição", "refeicao",
	"sobremesa", "bebida", "lanche", "jantar", "almoço", "almoco", "café",
	"cafe", "arroz", "feijão", "feijao", "carne", "frango", "peixe",
	"salada", "sopa", "pizza", "hambúrguer", "hamburguer", "burger",
	"sanduíche", "sanduiche", "torta", "bolo", "doce", "suco",
	"refrigerante", "cerveja", "vinho", "açaí", "acai", "pastel",
	"coxinha", "esfiha", "sushi", "temaki", "yakisoba", "porção", "porcao",
}

// Hard length bounds (runes). Outside these the text is never a dish name.
const (
	minNameLen = 3
	maxNameLen = 100
)

// Permissive fallback bounds for the final accept-by-length rule.
const (
	fallbackMinLen = 5
	fallbackMaxLen = 80
)

// Classifier is a pure, deterministic dish-name filter. The zero value has
// the length fallback disabled; use New for the standard behavior.
type Classifier struct {
	lengthFallback bool
}

// New creates a Classifier. lengthFallback keeps the permissive 5–80 char
// accept rule for strings that match neither patterns nor vocabulary.
func New(lengthFallback bool) *Classifier {
	return &Classifier{lengthFallback: lengthFallback}
}

// IsLikelyDishName reports whether text plausibly names a menu dish.
func (c *Classifier) IsLikelyDishName(text string) bool {
	text = strings.TrimSpace(text)

	n := utf8.RuneCountInString(text)
	if n < minNameLen || n > maxNameLen {
		return false
	}

	// Exclusions win over everything else.
	for _, re := range exclusionPatterns {
		if re.MatchString(text) {
			return false
		}
	}
	if _, nav := navigationLabels[strings.ToLower(text)]; nav {
		return false
	}

	for _, re := range inclusionPatterns {
		if re.MatchString(text) {
			return true
		}
	}

	lower := strings.ToLower(text)
	for _, word := range foodVocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}

	if c.lengthFallback {
		return n >= fallbackMinLen && n <= fallbackMaxLen
	}
	return false
}

package extract

import (
	"strings"
	"testing"
)

// The in-page script is generated from the same tables the Go strategies
// use; every ladder stage must be present in it, including the attribute
// names the data-attribute stage reads.
func TestInPageScriptMirrorsStrategyLadder(t *testing.T) {
	script := InPageScript()

	for _, attr := range dishNameAttrs {
		if !strings.Contains(script, attr) {
			t.Errorf("script is missing dish-name attribute %q", attr)
		}
	}
	if !strings.Contains(script, "getAttribute(attr)") {
		t.Error("script does not read names from the dish-name attributes")
	}

	tables := map[string][]string{
		"category headers":    categoryHeaderSelectors,
		"category containers": categoryContainerSelectors,
		"dish cards":          dishCardSelectors,
		"card ancestors":      cardAncestorSelectors,
		"names":               nameSelectors,
		"descriptions":        descriptionSelectors,
		"prices":              priceSelectors,
		"images":              imageSelectors,
	}
	for label, sels := range tables {
		for _, sel := range sels {
			// Selectors are embedded via json.Marshal, which escapes
			// the inner double quotes.
			if !strings.Contains(script, strings.ReplaceAll(sel, `"`, `\"`)) {
				t.Errorf("script is missing %s selector %q", label, sel)
			}
		}
	}
}

func TestInPageScriptHasNoUnexpandedVerbs(t *testing.T) {
	if strings.Contains(InPageScript(), "%!") {
		t.Fatal("template expansion and argument list are out of sync")
	}
}

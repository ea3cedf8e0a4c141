package extract

import (
	"encoding/json"
	"fmt"
	"sync"
)

// The browser transport evaluates this script in the page's own context,
// so the DOM it sees is the fully rendered one. It mirrors the Go-side
// strategy ladder (structured categories, flat cards, data attributes,
// headings) and shares the selector tables; the dish-name classifier runs
// afterwards on the Go side via Extractor.FilterInPlace.

var (
	inPageOnce   sync.Once
	inPageScript string
)

// InPageScript returns the page-context extraction function. The result is
// a JS arrow function (rod Eval format) producing an object shaped like
// models.ScrapedData.
func InPageScript() string {
	inPageOnce.Do(func() {
		inPageScript = fmt.Sprintf(inPageTemplate,
			jsList(categoryHeaderSelectors),
			jsList(categoryContainerSelectors),
			jsList(dishCardSelectors),
			jsList(dishNameAttrs),
			jsList(cardAncestorSelectors),
			jsList(nameSelectors),
			jsList(descriptionSelectors),
			jsList(priceSelectors),
			jsList(imageSelectors),
			jsList(restaurantNameSelectors),
			jsList(restaurantImageSelectors),
			jsList(statusBannerSelectors),
			jsList(statusMessageSelectors),
		)
	})
	return inPageScript
}

func jsList(selectors []string) string {
	b, _ := json.Marshal(selectors)
	return string(b)
}

const inPageTemplate = `() => {
	const categoryHeaderSels = %s;
	const categoryContainerSels = %s;
	const dishCardSels = %s;
	const dishNameAttrs = %s;
	const cardAncestorSel = %s.join(', ');
	const nameSels = %s;
	const descriptionSels = %s;
	const priceSels = %s;
	const imageSels = %s;
	const restaurantNameSels = %s;
	const restaurantImageSels = %s;
	const statusBannerSels = %s;
	const statusMessageSels = %s;

	const clean = (t) => (t || '').replace(/\s+/g, ' ').trim();

	const firstText = (root, sels) => {
		for (const sel of sels) {
			for (const el of root.querySelectorAll(sel)) {
				const t = clean(el.textContent);
				if (t) return t;
			}
		}
		return '';
	};

	const extractPrice = (root) => {
		for (const sel of priceSels) {
			for (const el of root.querySelectorAll(sel)) {
				let t = clean(el.textContent) || clean(el.getAttribute('data-price'));
				if (t && (/[$€£]/.test(t) || /\d/.test(t))) return t;
			}
		}
		return '';
	};

	const extractImage = (root) => {
		for (const sel of imageSels) {
			for (const el of root.querySelectorAll(sel)) {
				const src = (el.getAttribute('src') || '').trim();
				if (src) return src;
			}
		}
		return '';
	};

	const itemFromCard = (card, category) => {
		const name = firstText(card, nameSels);
		if (!name) return null;
		return {
			name: name,
			description: firstText(card, descriptionSels),
			price: extractPrice(card),
			image: extractImage(card),
			category: category,
		};
	};

	const items = [];
	const seenCards = new Set();

	// Structured categories first.
	for (const sel of categoryHeaderSels) {
		for (const header of document.querySelectorAll(sel)) {
			const label = clean(
				(header.querySelector('h2, h3') || header).textContent);
			if (!label || label.length >= 60) continue;

			let container = header;
			if (!dishCardSels.some((s) => header.querySelector(s))) {
				let anc = null;
				for (const cSel of categoryContainerSels) {
					anc = header.parentElement && header.parentElement.closest(cSel);
					if (anc) break;
				}
				container = anc || header.parentElement;
			}
			if (!container) continue;

			for (const cardSel of dishCardSels) {
				for (const card of container.querySelectorAll(cardSel)) {
					if (seenCards.has(card)) continue;
					seenCards.add(card);
					const item = itemFromCard(card, label);
					if (item) items.push(item);
				}
			}
		}
	}

	// Flat cards when no structure was found.
	if (items.length === 0) {
		for (const cardSel of dishCardSels) {
			for (const card of document.querySelectorAll(cardSel)) {
				if (seenCards.has(card)) continue;
				seenCards.add(card);
				const item = itemFromCard(card, '');
				if (item) items.push(item);
			}
		}
	}

	// Names carried in markup attributes, when no card matched.
	if (items.length === 0) {
		const seenNames = new Set();
		for (const attr of dishNameAttrs) {
			for (const el of document.querySelectorAll('[' + attr + ']')) {
				const name = clean(el.getAttribute(attr));
				if (!name || name.length <= 3 || /[$€£]/.test(name)) continue;
				if (seenNames.has(name)) continue;
				seenNames.add(name);
				const card = el.closest(cardAncestorSel) || el;
				items.push({
					name: name,
					description: firstText(card, descriptionSels),
					price: extractPrice(card),
					image: extractImage(card),
					category: '',
				});
			}
		}
	}

	// Bare headings as the last resort.
	if (items.length === 0) {
		const seenNames = new Set();
		for (const h of document.querySelectorAll('h3, h4, [class*="title"], [class*="name"]')) {
			const name = clean(h.textContent);
			if (!name || seenNames.has(name)) continue;
			seenNames.add(name);
			const card = h.closest(cardAncestorSel);
			items.push({
				name: name,
				description: card ? firstText(card, descriptionSels) : '',
				price: card ? extractPrice(card) : '',
				image: card ? extractImage(card) : '',
				category: '',
			});
		}
	}

	let restaurantName = firstText(document, restaurantNameSels);
	if (!restaurantName) {
		restaurantName = clean(document.title.split(/[|–—-]/)[0]);
	}

	const venueImage = (sels) => {
		for (const sel of sels) {
			for (const el of document.querySelectorAll(sel)) {
				const src = (el.getAttribute('src') || '').trim();
				if (src) return src;
			}
		}
		const og = document.querySelector('meta[property="og:image"]');
		return og ? (og.getAttribute('content') || '').trim() : '';
	};
	const restaurantImage = venueImage(restaurantImageSels);

	let isClosed = false;
	for (const sel of statusBannerSels) {
		for (const el of document.querySelectorAll(sel)) {
			const t = clean(el.textContent).toLowerCase();
			if (t.includes('fechada') || t.includes('fechado') || t.includes('closed')) {
				isClosed = true;
				break;
			}
		}
		if (isClosed) break;
	}

	let nextOpening = '';
	if (isClosed) {
		for (const sel of statusMessageSels) {
			for (const el of document.querySelectorAll(sel)) {
				const t = clean(el.textContent);
				if (/abre\s+(às?|as|em)\s+/i.test(t)) { nextOpening = t; break; }
			}
			if (nextOpening) break;
		}
	}

	return {
		restaurant_name: restaurantName,
		restaurant_image: restaurantImage,
		menu_items: items,
		is_closed: isClosed,
		next_opening: nextOpening,
	};
}`

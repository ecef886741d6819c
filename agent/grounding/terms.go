package grounding

// genericTerms are food/category nouns customers commonly ask about. A
// mention of one that is not a substring of any real item name is the
// classic hallucination pattern this validator exists to catch. The list is
// hand-curated and English-only; non-English turns are not covered.
var genericTerms = []string{
	"classic", "grilled", "veggie", "bacon", "mushroom", "swiss",
	"beef", "chicken", "cheese", "burger", "sandwich", "deluxe",
	"supreme", "premium", "signature", "special", "original",
	// coffee-specific generic terms
	"espresso shot", "cappuccino", "latte", "americano", "mocha",
	"flat white", "cold brew", "affogato", "cortado", "macchiato",
}

// negativeMarkers indicate the model is correctly declining an unavailable
// item ("we don't have lattes") rather than asserting it exists. Flagging
// those mentions would punish exactly the behavior we want.
var negativeMarkers = []string{
	"doesn't", "don't", "not available", "not on", "not in",
	"doesn't have", "don't have", "not currently", "not feature",
	"doesn't currently", "don't currently", "not offer", "doesn't offer",
}

// cartMarkers indicate a cart/order confirmation. A confirmation that names
// a real menu item is allowed through even if it also uses a generic noun.
var cartMarkers = []string{
	"added", "add", "cart", "order", "confirm", "placed",
	"added to your cart", "added to your order", "added to cart",
	"added to order", "i've added",
}

package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// parseEmbeddedState runs the page's inline scripts in a sandboxed JS
// VM and mines product-shaped globals (window.__INITIAL_STATE__ style
// data blobs that marketplaces ship instead of, or alongside, JSON-LD).
// It is a secondary machine-readable source: consulted only for fields
// JSON-LD did not provide, before falling back to DOM heuristics.
//
// The VM exposes just enough of a window shim for data-assignment
// scripts to run; anything touching the real DOM fails and is ignored.
func parseEmbeddedState(snap *Snapshot) structuredProduct {
	vm := goja.New()

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("location", map[string]any{"href": snap.URL})
	vm.Set("document", map[string]any{
		"location": map[string]any{"href": snap.URL},
	})
	vm.Set("console", map[string]any{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	executed := 0
	snap.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		if t, ok := sel.Attr("type"); ok && t != "" && t != "text/javascript" && t != "application/javascript" {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		// Most inline scripts fail against the shim; that is expected.
		if _, err := vm.RunString(src); err == nil {
			executed++
		}
	})

	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		obj, ok := vm.Get(key).Export().(map[string]any)
		if !ok {
			continue
		}
		if candidate := findProductState(obj, 0); candidate != nil {
			log.Debug().
				Str("global", key).
				Int("scripts_executed", executed).
				Msg("Product state found in inline script global")
			return productFromMap(candidate)
		}
	}

	return structuredProduct{}
}

// findProductState walks a state blob looking for a map that carries a
// product identity (a name plus a price source). Depth is bounded;
// state trees can be deeply recursive.
func findProductState(obj map[string]any, depth int) map[string]any {
	if depth > 4 {
		return nil
	}
	if asString(obj["name"]) != "" {
		if _, ok := obj["offers"]; ok {
			return obj
		}
		if asFloat(obj["price"]) > 0 {
			// Normalize a flat price into the offers shape the
			// structured decoder expects.
			return map[string]any{
				"name":        obj["name"],
				"description": obj["description"],
				"image":       obj["image"],
				"offers":      map[string]any{"price": obj["price"]},
			}
		}
	}
	for _, v := range obj {
		if child, ok := v.(map[string]any); ok {
			if found := findProductState(child, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
	}
	return standards[key]
}

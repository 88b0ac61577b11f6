// Package classify maps raw assistant payloads to display variants.
//
// The assistant backend answers every chat turn through one endpoint but with
// heterogeneous shapes: a full recipe object, a wrapped free-text answer, an
// arbitrary object, or text that is not JSON at all. Classify turns any such
// payload into exactly one Response variant and never fails.
//
// Variants are a closed set. Code that needs to handle every variant should
// implement Visitor; adding a variant adds a Visitor method, so every consumer
// stops compiling until it handles the new case.
package classify

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tags a Response variant.
type Kind int

const (
	KindRawText Kind = iota
	KindPlainText
	KindRecipe
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindRawText:
		return "raw_text"
	case KindPlainText:
		return "plain_text"
	case KindRecipe:
		return "recipe"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Response is a classified assistant payload.
type Response interface {
	Kind() Kind
	Accept(v Visitor)
}

// Visitor handles each Response variant.
type Visitor interface {
	VisitRecipe(r Recipe)
	VisitPlainText(t PlainText)
	VisitRawText(t RawText)
	VisitUnrecognized(u UnrecognizedStructured)
}

// Recipe is a cocktail recipe. Ingredients and Instructions keep the order
// in which the backend listed them.
type Recipe struct {
	Name         string
	Description  string
	Ingredients  []string
	Instructions []string
}

// PlainText is a free-text answer wrapped in a response field.
type PlainText struct {
	Text string
}

// RawText is a payload that could not be parsed as structured data.
type RawText struct {
	Text string
}

// UnrecognizedStructured is parseable structured data that matches no known
// shape. Raw holds the payload text for a generic dump.
type UnrecognizedStructured struct {
	Raw string
}

func (Recipe) Kind() Kind { return KindRecipe }
func (PlainText) Kind() Kind { return KindPlainText }
func (RawText) Kind() Kind { return KindRawText }
func (UnrecognizedStructured) Kind() Kind { return KindUnrecognized }

func (r Recipe) Accept(v Visitor) { v.VisitRecipe(r) }
func (t PlainText) Accept(v Visitor) { v.VisitPlainText(t) }
func (t RawText) Accept(v Visitor) { v.VisitRawText(t) }
func (u UnrecognizedStructured) Accept(v Visitor) { v.VisitUnrecognized(u) }

// maxNesting is how many times a structured response field is unwrapped.
const maxNesting = 1

// parseResult is the outcome of reading a payload as structured data.
// Only JSON objects and arrays count as structured; object is nil for arrays.
type parseResult struct {
	ok     bool
	object map[string]json.RawMessage
}

func parse(raw string) parseResult {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || !json.Valid(data) {
		return parseResult{}
	}

	switch data[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return parseResult{}
		}
		return parseResult{ok: true, object: obj}
	case '[':
		return parseResult{ok: true}
	default:
		return parseResult{}
	}
}

// Classify maps raw to a Response. The first matching rule wins:
//
//  1. not structured data: RawText
//  2. name + ingredients + instructions: Recipe
//  3. a response field: PlainText for scalars, one level of unwrapping for
//     structured values
//  4. anything else: UnrecognizedStructured
func Classify(raw string) Response {
	p := parse(raw)
	if !p.ok {
		return RawText{Text: raw}
	}
	return classifyStructured(raw, p, maxNesting)
}

func classifyStructured(raw string, p parseResult, depth int) Response {
	if r, ok := asRecipe(p.object); ok {
		return r
	}

	if value, ok := lookup(p.object, "response"); ok {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			return PlainText{Text: s}
		}

		nested := parse(string(value))
		if !nested.ok {
			// numbers and booleans
			return PlainText{Text: string(value)}
		}
		if depth > 0 {
			return classifyStructured(string(value), nested, depth-1)
		}
		return UnrecognizedStructured{Raw: string(value)}
	}

	return UnrecognizedStructured{Raw: raw}
}

// lookup returns obj[key] when the key is present and not null.
func lookup(obj map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func asRecipe(obj map[string]json.RawMessage) (Recipe, bool) {
	nameRaw, ok := lookup(obj, "name")
	if !ok {
		return Recipe{}, false
	}
	var name string
	if err := json.Unmarshal(nameRaw, &name); err != nil || name == "" {
		return Recipe{}, false
	}

	ingredientsRaw, ok := lookup(obj, "ingredients")
	if !ok {
		return Recipe{}, false
	}
	ingredients, ok := stringList(ingredientsRaw)
	if !ok {
		return Recipe{}, false
	}

	instructionsRaw, ok := lookup(obj, "instructions")
	if !ok {
		return Recipe{}, false
	}
	instructions, ok := stringList(instructionsRaw)
	if !ok {
		return Recipe{}, false
	}

	var description string
	if d, ok := lookup(obj, "description"); ok {
		if err := json.Unmarshal(d, &description); err != nil {
			description = ""
		}
	}

	return Recipe{
		Name:         name,
		Description:  description,
		Ingredients:  ingredients,
		Instructions: instructions,
	}, true
}

// stringList decodes a JSON array. String items are used as-is, other items
// are kept as compact JSON text.
func stringList(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			out = append(out, strings.TrimSpace(string(item)))
			continue
		}
		out = append(out, buf.String())
	}
	return out, true
}

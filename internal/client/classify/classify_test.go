package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mojito = `{
  "name": "Mojito",
  "ingredients": ["White rum", "Fresh lime juice", "Sugar", "Mint leaves", "Soda water"],
  "instructions": [
    "Muddle mint leaves with sugar and lime juice",
    "Add rum and fill glass with ice",
    "Top with soda water and garnish with mint sprig"
  ],
  "description": "A refreshing Cuban highball"
}`

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Response
	}{
		{
			name: "recipe",
			raw:  mojito,
			want: Recipe{
				Name:        "Mojito",
				Description: "A refreshing Cuban highball",
				Ingredients: []string{"White rum", "Fresh lime juice", "Sugar", "Mint leaves", "Soda water"},
				Instructions: []string{
					"Muddle mint leaves with sugar and lime juice",
					"Add rum and fill glass with ice",
					"Top with soda water and garnish with mint sprig",
				},
			},
		},
		{
			name: "recipe without description",
			raw:  `{"name":"Negroni","ingredients":["Gin","Campari","Vermouth"],"instructions":["Stir"]}`,
			want: Recipe{Name: "Negroni", Ingredients: []string{"Gin", "Campari", "Vermouth"}, Instructions: []string{"Stir"}},
		},
		{
			name: "recipe with non-string entries keeps them as json",
			raw:  `{"name":"Odd","ingredients":["Gin",{"qty":2}],"instructions":[1]}`,
			want: Recipe{Name: "Odd", Ingredients: []string{"Gin", `{"qty":2}`}, Instructions: []string{"1"}},
		},
		{
			name: "recipe wins over response field",
			raw:  `{"name":"A","ingredients":[],"instructions":[],"response":"ignored"}`,
			want: Recipe{Name: "A", Ingredients: []string{}, Instructions: []string{}},
		},
		{
			name: "ingredients not a list",
			raw:  `{"name":"A","ingredients":"gin","instructions":["x"]}`,
			want: UnrecognizedStructured{Raw: `{"name":"A","ingredients":"gin","instructions":["x"]}`},
		},
		{
			name: "plain text response",
			raw:  `{"response": "The Manhattan is a classic cocktail."}`,
			want: PlainText{Text: "The Manhattan is a classic cocktail."},
		},
		{
			name: "empty plain text response",
			raw:  `{"response": ""}`,
			want: PlainText{Text: ""},
		},
		{
			name: "numeric response",
			raw:  `{"response": 42}`,
			want: PlainText{Text: "42"},
		},
		{
			name: "nested recipe is unwrapped once",
			raw:  `{"response": {"name":"Mojito","ingredients":["Rum"],"instructions":["Mix"]}}`,
			want: Recipe{Name: "Mojito", Ingredients: []string{"Rum"}, Instructions: []string{"Mix"}},
		},
		{
			name: "nested plain text is unwrapped once",
			raw:  `{"response": {"response": "I'm not sure about that."}}`,
			want: PlainText{Text: "I'm not sure about that."},
		},
		{
			name: "second level of nesting is not unwrapped",
			raw:  `{"response": {"response": {"response": "deep"}}}`,
			want: UnrecognizedStructured{Raw: `{"response": "deep"}`},
		},
		{
			name: "nested unknown shape dumps nested value",
			raw:  `{"response": {"foo": 1}}`,
			want: UnrecognizedStructured{Raw: `{"foo": 1}`},
		},
		{
			name: "null response counts as absent",
			raw:  `{"response": null}`,
			want: UnrecognizedStructured{Raw: `{"response": null}`},
		},
		{
			name: "unknown object",
			raw:  `{"foo": 1, "bar": 2}`,
			want: UnrecognizedStructured{Raw: `{"foo": 1, "bar": 2}`},
		},
		{
			name: "array",
			raw:  `[1, 2, 3]`,
			want: UnrecognizedStructured{Raw: `[1, 2, 3]`},
		},
		{
			name: "plain words",
			raw:  "hello",
			want: RawText{Text: "hello"},
		},
		{
			name: "empty string",
			raw:  "",
			want: RawText{Text: ""},
		},
		{
			name: "truncated json",
			raw:  `{"response": "cut`,
			want: RawText{Text: `{"response": "cut`},
		},
		{
			name: "json scalar is not structured",
			raw:  `"quoted"`,
			want: RawText{Text: `"quoted"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	inputs := []string{mojito, `{"response":"x"}`, `{"foo":1}`, "hello", ""}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		assert.Empty(t, cmp.Diff(first, second), "input %q", in)
	}
}

func TestClassify_RecipePreservesOrder(t *testing.T) {
	got := Classify(`{"name":"N","ingredients":["c","a","b"],"instructions":["3","1","2"]}`)

	r, ok := got.(Recipe)
	require.True(t, ok, "expected Recipe, got %T", got)
	assert.Equal(t, []string{"c", "a", "b"}, r.Ingredients)
	assert.Equal(t, []string{"3", "1", "2"}, r.Instructions)
}

type kindRecorder struct{ seen []Kind }

func (k *kindRecorder) VisitRecipe(Recipe) { k.seen = append(k.seen, KindRecipe) }
func (k *kindRecorder) VisitPlainText(PlainText) { k.seen = append(k.seen, KindPlainText) }
func (k *kindRecorder) VisitRawText(RawText) { k.seen = append(k.seen, KindRawText) }
func (k *kindRecorder) VisitUnrecognized(UnrecognizedStructured) { k.seen = append(k.seen, KindUnrecognized) }

func TestAccept_DispatchesToMatchingVisitMethod(t *testing.T) {
	rec := &kindRecorder{}
	for _, r := range []Response{Recipe{}, PlainText{}, RawText{}, UnrecognizedStructured{}} {
		r.Accept(rec)
	}
	assert.Equal(t, []Kind{KindRecipe, KindPlainText, KindRawText, KindUnrecognized}, rec.seen)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "recipe", KindRecipe.String())
	assert.Equal(t, "plain_text", KindPlainText.String())
	assert.Equal(t, "raw_text", KindRawText.String())
	assert.Equal(t, "unrecognized", KindUnrecognized.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

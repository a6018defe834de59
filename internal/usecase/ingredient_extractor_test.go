package usecase

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestIngredientExtractor_Parse(t *testing.T) {
	extractor := NewIngredientExtractor()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "marked list",
			text: "Ingredients: Water, Sugar, Salt, Natural Flavor.",
			want: []string{"water", "sugar", "salt", "natural flavor"},
		},
		{
			name: "unmarked list found heuristically",
			text: "Calories 120\nWater, sugar, salt",
			want: []string{"water", "sugar", "salt"},
		},
		{
			name: "cut at terminator",
			text: "Ingredients: Water, Sugar\nBest before 2026\nKeep refrigerated",
			want: []string{"water", "sugar"},
		},
		{
			name: "garbage line dropped",
			text: "Ingredients: Water, Sugar\n#$%^&*()!@",
			want: []string{"water", "sugar"},
		},
		{
			name: "short and long tokens dropped",
			text: "Ingredients: a, bb, " + strings.Repeat("x", 101) + ", sugar",
			want: []string{"bb", "sugar"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Parse(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIngredientExtractor_ParseLimit(t *testing.T) {
	extractor := NewIngredientExtractor()

	parts := make([]string, 60)
	for i := range parts {
		parts[i] = fmt.Sprintf("spice%d", i)
	}
	got := extractor.Parse("Ingredients: " + strings.Join(parts, ", "))

	if len(got) != maxIngredientTokens {
		t.Fatalf("len(Parse()) = %d, want %d", len(got), maxIngredientTokens)
	}
	if got[0] != "spice0" || got[49] != "spice49" {
		t.Errorf("order not preserved: first=%q last=%q", got[0], got[49])
	}
	for _, name := range got {
		if n := utf8.RuneCountInString(name); n < minIngredientTokenLen || n > maxIngredientTokenLen {
			t.Errorf("token %q has length %d", name, n)
		}
	}
}

func TestIngredientExtractor_Extract(t *testing.T) {
	extractor := NewIngredientExtractor()

	t.Run("strips percentages and allergen statement", func(t *testing.T) {
		text := "INGREDIENTS: Enriched flour (wheat flour, niacin), sugar, 2% or less of: salt, soy lecithin.\nCONTAINS: WHEAT, SOY."
		got := extractor.Extract(text)

		if strings.Contains(got, "2%") {
			t.Errorf("Extract() kept percentage: %q", got)
		}
		if strings.Contains(got, "CONTAINS") {
			t.Errorf("Extract() kept allergen statement: %q", got)
		}
		if !strings.HasPrefix(got, "Enriched flour") || !strings.HasSuffix(got, "soy lecithin") {
			t.Errorf("Extract() = %q", got)
		}
	})

	t.Run("too short result is a failure", func(t *testing.T) {
		if got := extractor.Extract("Ingredients: a"); got != "" {
			t.Errorf("Extract() = %q, want empty", got)
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		if got := extractor.Extract(" \n\t "); got != "" {
			t.Errorf("Extract() = %q, want empty", got)
		}
	})
}

func TestIngredientExtractor_ExtractIsFixedPoint(t *testing.T) {
	extractor := NewIngredientExtractor()

	inputs := []string{
		"Ingredients: Water, Sugar, Salt, Natural Flavor.",
		"INGREDIENTS: Enriched flour (wheat flour, niacin), sugar, 2% or less of: salt, soy lecithin.\nCONTAINS: WHEAT, SOY.",
		"Zutaten: Zucker, Kakaobutter, Vollmilchpulver ;; Emulgator | Lecithine",
		"Aqua, Glycerin, Cetearyl Alcohol, Citric Acid, Parfum",
		"Ingredients: sugar, made with: love, salt",
		"Ingredients: sugar, total\nfat free milk, salt",
		"Ingredients: water, composition: soy, salt",
		"Ingredients: sugar,   e.g.,  a/b,  c-d,   x.y",
		"Ingredients: oats, 2\ncalories per gram, honey",
		"Ingredients: rice , , ; flour ,barley",
	}

	for _, in := range inputs {
		once := extractor.Extract(in)
		if twice := extractor.Extract(once); twice != once {
			t.Errorf("Extract not idempotent for %q:\n once  = %q\n twice = %q", in, once, twice)
		}
	}
}

func TestIngredientExtractor_ExtractJoinedLines(t *testing.T) {
	extractor := NewIngredientExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "later section marker becomes a separator",
			text: "Ingredients: sugar, made with: love, salt",
			want: "sugar, love, salt",
		},
		{
			name: "second marker keeps earlier ingredients",
			text: "Ingredients: water, composition: soy, salt",
			want: "water, soy, salt",
		},
		{
			name: "stop phrase split across lines",
			text: "Ingredients: sugar, total\nfat free milk, salt",
			want: "sugar, salt",
		},
		{
			name: "garbage ratio ignores whitespace runs",
			text: "Ingredients: sugar,   e.g.,  a/b,  c-d,   x.y",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractor.Extract(tt.text); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDropBoilerplateTokens(t *testing.T) {
	tests := map[string]string{
		"sugar, total fat free milk, salt": "sugar, salt",
		"oats, 2 calories per gram":        "oats,",
		"water; may contain nuts; salt":    "water; salt",
		"water, salt":                      "water, salt",
	}
	for in, want := range tests {
		if got := dropBoilerplateTokens(in); got != want {
			t.Errorf("dropBoilerplateTokens(%q) = %q, want %q", in, got, want)
		}
	}
}

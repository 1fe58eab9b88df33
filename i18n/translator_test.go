package i18n_test

import (
	"testing"

	"github.com/reoring/mutations/i18n"
)

type upperTranslator struct{}

func (upperTranslator) Message(code string, data map[string]string) string {
	return data["field"] + ":" + code
}

func TestDictionary(t *testing.T) {
	en := i18n.Dictionary("en-US")
	if got := en.Message("required", map[string]string{"field": "Name"}); got != "Name is required" {
		t.Fatalf("en: %q", got)
	}
	if got := en.Message("length", map[string]string{"field": "Name", "bound": "min"}); got != "Name is too short" {
		t.Fatalf("bound: %q", got)
	}
	if got := en.Message("invalid", map[string]string{"field": "Age", "expected": "an integer"}); got != "Age isn't an integer" {
		t.Fatalf("expected: %q", got)
	}
	if got := en.Message("is_a_bob", map[string]string{"field": "Bob"}); got != "Bob is invalid" {
		t.Fatalf("unknown code: %q", got)
	}

	ja := i18n.Dictionary("ja-JP,ja;q=0.9")
	if got := ja.Message("range", map[string]string{"field": "Age", "bound": "max"}); got != "Ageが大きすぎます" {
		t.Fatalf("ja: %q", got)
	}
	if got := i18n.Dictionary("fr").Message("empty", map[string]string{"field": "Name"}); got != "Name can't be blank" {
		t.Fatalf("unsupported languages fall back to English: %q", got)
	}
}

func TestSetLanguageAndTranslator(t *testing.T) {
	t.Cleanup(func() { i18n.SetTranslator(nil) })

	i18n.SetLanguage("ja")
	if got := i18n.T("required", map[string]string{"field": "Name"}); got != "Nameは必須です" {
		t.Fatalf("ja: %q", got)
	}
	i18n.SetTranslator(upperTranslator{})
	if got := i18n.T("required", map[string]string{"field": "Name"}); got != "Name:required" {
		t.Fatalf("custom: %q", got)
	}
	i18n.SetTranslator(nil)
	if got := i18n.T("required", map[string]string{"field": "Name"}); got != "Name is required" {
		t.Fatalf("reset: %q", got)
	}
}

func TestFieldTitle(t *testing.T) {
	cases := map[string]string{
		"name":             "Name",
		"zip_code":         "Zip Code",
		"address.zip_code": "Zip Code",
		"items.0":          "Items",
		"items.0.sku":      "Sku",
		"":                 "Input",
		"0":                "Input",
	}
	for in, want := range cases {
		if got := i18n.FieldTitle(in); got != want {
			t.Fatalf("%q: got %q want %q", in, got, want)
		}
	}
}

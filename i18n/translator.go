package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Translator retrieves localized messages for symbolic codes.
// data provides metadata to embed in the message: "field" always carries the
// titleized field name; filters add keys such as "expected", "bound", "min"
// or "max".
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"required":   "{field} is required",
		"invalid":    "{field} is invalid",
		"expected":   "{field} isn't {expected}",
		"nils":       "{field} can't be nil",
		"empty":      "{field} can't be blank",
		"length":     "{field} is the wrong length",
		"length.min": "{field} is too short",
		"length.max": "{field} is too long",
		"range":      "{field} is out of range",
		"range.min":  "{field} is too small",
		"range.max":  "{field} is too big",
		"in":         "{field} isn't an option",
		"format":     "{field} isn't in the right format",
		"unique":     "{field} is duplicated",
	},
	"ja": {
		"required":   "{field}は必須です",
		"invalid":    "{field}が不正です",
		"expected":   "{field}の型が不正です",
		"nils":       "{field}にnilは指定できません",
		"empty":      "{field}を空にはできません",
		"length":     "{field}の長さが不正です",
		"length.min": "{field}が短すぎます",
		"length.max": "{field}が長すぎます",
		"range":      "{field}が範囲外です",
		"range.min":  "{field}が小さすぎます",
		"range.max":  "{field}が大きすぎます",
		"in":         "{field}は選択肢にありません",
		"format":     "{field}の形式が不正です",
		"unique":     "{field}が重複しています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	key := code
	switch code {
	case "invalid":
		if data["expected"] != "" {
			key = "expected"
		}
	case "length", "range":
		if b := data["bound"]; b != "" {
			key = code + "." + b
		}
	}
	tmpl, found := dict[key]
	if !found {
		// command-defined codes fall back to the generic phrase
		tmpl = dict["invalid"]
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	out := strings.NewReplacer(pairs...).Replace(tmpl)
	return strings.TrimSpace(out)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

var supported = language.NewMatcher([]language.Tag{language.English, language.Japanese})

// SetLanguage switches the built-in Translator language. lang may be any BCP 47
// tag or Accept-Language value; unsupported languages fall back to English.
func SetLanguage(lang string) {
	mu.Lock()
	currentTranslator = dictTranslator{lang: match(lang)}
	mu.Unlock()
}

func match(lang string) string {
	tag, _ := language.MatchStrings(supported, lang)
	base, _ := tag.Base()
	return base.String()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// Current returns the package-level Translator.
func Current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// Dictionary returns the built-in translator for lang without touching the
// package-level one.
func Dictionary(lang string) Translator { return dictTranslator{lang: match(lang)} }

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return Current().Message(code, data) }

// FieldTitle turns the last named segment of a dotted path into a display
// title: "address.zip_code" -> "Zip Code", "items.0" -> "Items".
func FieldTitle(path string) string {
	segs := strings.Split(path, ".")
	name := ""
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != "" && !isIndex(segs[i]) {
			name = segs[i]
			break
		}
	}
	if name == "" {
		return "Input"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return cases.Title(language.English).String(name)
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

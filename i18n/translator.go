package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "actual" or "keyword").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalog = map[string]map[string]string{
	"en": {
		"invalid_type":        "expected {expected}, got {actual}",
		"required":            "required property {key} missing",
		"invalid_literal":     "expected literal {expected}, got {actual}",
		"invalid_enum":        "value {actual} is not one of {expected}",
		"no_match":            "value matches none of the anyOf options",
		"parse_error":         "parse error",
		"truncated":           "input ended before the value was complete",
		"trailing_data":       "unexpected data after the complete value",
		"schema_mismatch":     "input does not match the schema: expected {expected}, got {actual}",
		"unknown_key":         "unknown property {key}",
		"duplicate_key":       "duplicate key {key}",
		"unsupported_keyword": "keyword {keyword} is not supported",
		"invalid_keyword":     "invalid value for keyword {keyword}",
		"invalid_schema":      "invalid schema",
	},
	"ja": {
		"invalid_type":        "型が不正です ({expected} が必要, 実際は {actual})",
		"required":            "必須プロパティ {key} が不足しています",
		"invalid_literal":     "リテラル値が一致しません ({expected} が必要)",
		"invalid_enum":        "列挙値 {expected} のいずれでもありません",
		"no_match":            "anyOf のいずれの候補にも一致しません",
		"parse_error":         "解析エラー",
		"truncated":           "値が完成する前に入力が終了しました",
		"trailing_data":       "完成した値の後ろに余分なデータがあります",
		"schema_mismatch":     "入力がスキーマと一致しません ({expected} が必要, 実際は {actual})",
		"unknown_key":         "未定義のプロパティ {key} があります",
		"duplicate_key":       "キー {key} が重複しています",
		"unsupported_keyword": "キーワード {keyword} はサポートされていません",
		"invalid_keyword":     "キーワード {keyword} の値が不正です",
		"invalid_schema":      "スキーマが不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msgs, ok := catalog[t.lang]
	if !ok {
		msgs = catalog["en"]
	}
	tmpl, ok := msgs[code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

// expand substitutes {name} placeholders. Missing entries render as "?".
func expand(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	var b strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		b.WriteString(tmpl[:i])
		name := tmpl[i+1 : i+j]
		if v, ok := data[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString("?")
		}
		tmpl = tmpl[i+j+1:]
	}
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }

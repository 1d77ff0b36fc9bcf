package jsonschema

import (
	"strconv"
	"strings"
)

// camelName derives a $defs identifier from a description:
// "Hello world" -> "helloWorld", "123 items" -> "_123Items".
func camelName(desc string) string {
	words := strings.FieldsFunc(desc, func(r rune) bool { return !isAlnum(r) })
	var b strings.Builder
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		b.WriteString(w)
	}
	name := b.String()
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// namer hands out unique identifiers. A base that is empty or already taken
// gets the smallest free numeric suffix starting at 1.
type namer struct{ used map[string]bool }

func (n *namer) name(desc string) string {
	if n.used == nil {
		n.used = map[string]bool{}
	}
	base := camelName(desc)
	if base != "" && !n.used[base] {
		n.used[base] = true
		return base
	}
	if base == "" {
		base = "def"
	}
	for i := 1; ; i++ {
		cand := base + strconv.Itoa(i)
		if !n.used[cand] {
			n.used[cand] = true
			return cand
		}
	}
}

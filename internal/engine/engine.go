package engine

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Kind represents the JSON kind of a scanned value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is one node of a possibly incomplete JSON document. A value that is
// not Complete always extends to the end of the scanned buffer.
type Value struct {
	Kind     Kind
	Complete bool
	Offset   int

	Bool bool
	// Text is the decoded content of a string (the prefix decoded so far when
	// incomplete) or the raw literal of a number.
	Text string

	// Object members in input order. Members[i] is nil when the buffer ends
	// between Keys[i] and its value.
	Keys    []string
	Members []*Value

	Items []*Value
}

// Get returns the last member named key.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil {
		return nil, false
	}
	for i := len(v.Keys) - 1; i >= 0; i-- {
		if v.Keys[i] == key {
			return v.Members[i], true
		}
	}
	return nil, false
}

// Document is the result of scanning a buffer.
type Document struct {
	// Root is nil when the buffer holds only whitespace.
	Root *Value
	// Trailing is the offset of the first non-whitespace byte after a
	// complete root value, or -1.
	Trailing int
}

// Scan parses buf as a prefix of a JSON document. Running out of input is
// never an error; the affected values are marked incomplete. When final is
// true a number that reaches the end of buf is closed if its grammar allows.
// Bytes that cannot continue any JSON document yield an IssueError.
func Scan(buf string, final bool, opt EnforceOptions) (*Document, error) {
	if opt.MaxBytes > 0 && int64(len(buf)) > opt.MaxBytes {
		return nil, IssueError{SimpleIssue{Code: "parse_error", Message: "max bytes exceeded", Offset: int(opt.MaxBytes)}}
	}
	s := &scanner{buf: buf, final: final, opt: opt}
	doc := &Document{Trailing: -1}
	root, err := s.value()
	if err != nil {
		return nil, err
	}
	doc.Root = root
	if root != nil && root.Complete {
		s.skipSpace()
		if s.pos < len(s.buf) {
			doc.Trailing = s.pos
		}
	}
	return doc, nil
}

type scanner struct {
	buf   string
	pos   int
	final bool
	opt   EnforceOptions
	depth int
	path  []string
}

func (s *scanner) eof() bool { return s.pos >= len(s.buf) }

func (s *scanner) skipSpace() {
	for s.pos < len(s.buf) {
		switch s.buf[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) fail(msg string) error {
	return IssueError{SimpleIssue{Code: "parse_error", Path: strings.Join(s.path, "."), Message: msg, Offset: s.pos}}
}

// value scans one value. It returns nil without error when the buffer ends
// before the value starts.
func (s *scanner) value() (*Value, error) {
	s.skipSpace()
	if s.eof() {
		return nil, nil
	}
	switch c := s.buf[s.pos]; {
	case c == '{':
		return s.object()
	case c == '[':
		return s.array()
	case c == '"':
		return s.str()
	case c == 't':
		return s.keyword("true", KindBool, true)
	case c == 'f':
		return s.keyword("false", KindBool, false)
	case c == 'n':
		return s.keyword("null", KindNull, false)
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	default:
		return nil, s.fail("unexpected character " + strconv.QuoteRune(rune(c)))
	}
}

func (s *scanner) keyword(word string, kind Kind, b bool) (*Value, error) {
	v := &Value{Kind: kind, Offset: s.pos, Bool: b}
	for i := 0; i < len(word); i++ {
		if s.eof() {
			return v, nil
		}
		if s.buf[s.pos] != word[i] {
			return nil, s.fail("invalid literal, expected " + word)
		}
		s.pos++
	}
	v.Complete = true
	return v, nil
}

// number scans a JSON number. The grammar is tracked so that a number cut at
// "-", "1." or "1e" is never reported as complete.
func (s *scanner) number() (*Value, error) {
	start := s.pos
	v := &Value{Kind: KindNumber, Offset: start}
	const (
		stSign = iota
		stZero
		stInt
		stDot
		stFrac
		stExp
		stExpSign
		stExpDigits
	)
	st := stSign
	if s.buf[s.pos] == '-' {
		s.pos++
	}
loop:
	for !s.eof() {
		c := s.buf[s.pos]
		switch st {
		case stSign:
			switch {
			case c == '0':
				st = stZero
			case c >= '1' && c <= '9':
				st = stInt
			default:
				return nil, s.fail("invalid number")
			}
		case stZero, stInt:
			switch {
			case st == stInt && c >= '0' && c <= '9':
			case c == '.':
				st = stDot
			case c == 'e' || c == 'E':
				st = stExp
			default:
				break loop
			}
		case stDot:
			if c < '0' || c > '9' {
				return nil, s.fail("invalid number: expected digit after decimal point")
			}
			st = stFrac
		case stFrac:
			switch {
			case c >= '0' && c <= '9':
			case c == 'e' || c == 'E':
				st = stExp
			default:
				break loop
			}
		case stExp:
			switch {
			case c == '+' || c == '-':
				st = stExpSign
			case c >= '0' && c <= '9':
				st = stExpDigits
			default:
				return nil, s.fail("invalid number: expected exponent digits")
			}
		case stExpSign:
			if c < '0' || c > '9' {
				return nil, s.fail("invalid number: expected exponent digits")
			}
			st = stExpDigits
		case stExpDigits:
			if c < '0' || c > '9' {
				break loop
			}
		}
		s.pos++
	}
	v.Text = s.buf[start:s.pos]
	closed := st == stZero || st == stInt || st == stFrac || st == stExpDigits
	if !s.eof() {
		// A delimiter follows; the literal ended here.
		v.Complete = true
		return v, nil
	}
	v.Complete = closed && s.final
	return v, nil
}

// str scans a string. An incomplete string keeps the prefix decoded so far;
// a trailing partial escape or partial UTF-8 sequence is left out.
func (s *scanner) str() (*Value, error) {
	v := &Value{Kind: KindString, Offset: s.pos}
	s.pos++ // opening quote
	var b strings.Builder
	for {
		if s.eof() {
			v.Text = trimPartialRune(b.String())
			return v, nil
		}
		c := s.buf[s.pos]
		switch {
		case c == '"':
			s.pos++
			v.Text = b.String()
			v.Complete = true
			return v, nil
		case c == '\\':
			r, n, ok, err := s.escape()
			if err != nil {
				return nil, err
			}
			if !ok {
				v.Text = b.String()
				s.pos = len(s.buf)
				return v, nil
			}
			b.WriteRune(r)
			s.pos += n
		default:
			// Raw control characters are accepted; models emit them.
			end := s.pos + 1
			for end < len(s.buf) && s.buf[end] != '"' && s.buf[end] != '\\' {
				end++
			}
			b.WriteString(s.buf[s.pos:end])
			s.pos = end
		}
	}
}

// escape decodes the escape sequence at s.pos. ok is false when the buffer
// ends inside the sequence.
func (s *scanner) escape() (r rune, n int, ok bool, err error) {
	rest := s.buf[s.pos:]
	if len(rest) < 2 {
		return 0, 0, false, nil
	}
	switch rest[1] {
	case '"':
		return '"', 2, true, nil
	case '\\':
		return '\\', 2, true, nil
	case '/':
		return '/', 2, true, nil
	case 'b':
		return '\b', 2, true, nil
	case 'f':
		return '\f', 2, true, nil
	case 'n':
		return '\n', 2, true, nil
	case 'r':
		return '\r', 2, true, nil
	case 't':
		return '\t', 2, true, nil
	case 'u':
		r1, ok, err := s.hex4(rest[2:])
		if !ok || err != nil {
			return 0, 0, false, err
		}
		if !utf16.IsSurrogate(r1) {
			return r1, 6, true, nil
		}
		tail := rest[6:]
		if len(tail) < 2 {
			if len(tail) == 1 && tail[0] != '\\' {
				return utf8.RuneError, 6, true, nil
			}
			return 0, 0, false, nil
		}
		if tail[0] != '\\' || tail[1] != 'u' {
			return utf8.RuneError, 6, true, nil
		}
		r2, ok, err := s.hex4(tail[2:])
		if !ok || err != nil {
			return 0, 0, false, err
		}
		if dec := utf16.DecodeRune(r1, r2); dec != utf8.RuneError {
			return dec, 12, true, nil
		}
		return utf8.RuneError, 6, true, nil
	default:
		s.pos++
		return 0, 0, false, s.fail("invalid escape sequence")
	}
}

func (s *scanner) hex4(p string) (rune, bool, error) {
	var r rune
	for i := 0; i < 4; i++ {
		if i >= len(p) {
			return 0, false, nil
		}
		c := p[i]
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false, s.fail("invalid unicode escape")
		}
		r = r<<4 | rune(d)
	}
	return r, true, nil
}

func trimPartialRune(s string) string {
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		c := s[len(s)-i]
		if c < utf8.RuneSelf {
			return s
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRuneInString(s[len(s)-i:]) {
				return s[:len(s)-i]
			}
			return s
		}
	}
	return s
}

func (s *scanner) enter() error {
	s.depth++
	if s.opt.MaxDepth > 0 && s.depth > s.opt.MaxDepth {
		return IssueError{SimpleIssue{Code: "parse_error", Path: strings.Join(s.path, "."), Message: "max depth exceeded", Offset: s.pos}}
	}
	return nil
}

func (s *scanner) leave() { s.depth-- }

func (s *scanner) array() (*Value, error) {
	v := &Value{Kind: KindArray, Offset: s.pos}
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()
	s.pos++
	for {
		s.skipSpace()
		if s.eof() {
			return v, nil
		}
		if s.buf[s.pos] == ']' {
			s.pos++
			v.Complete = true
			return v, nil
		}
		if len(v.Items) > 0 {
			if s.buf[s.pos] != ',' {
				return nil, s.fail("expected ',' or ']' in array")
			}
			s.pos++
			s.skipSpace()
			if s.eof() {
				return v, nil
			}
			if s.buf[s.pos] == ']' {
				return nil, s.fail("trailing comma in array")
			}
		}
		s.path = append(s.path, strconv.Itoa(len(v.Items)))
		item, err := s.value()
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return nil, err
		}
		if item == nil {
			return v, nil
		}
		v.Items = append(v.Items, item)
		if !item.Complete {
			return v, nil
		}
	}
}

func (s *scanner) object() (*Value, error) {
	v := &Value{Kind: KindObject, Offset: s.pos}
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()
	s.pos++
	var seen map[string]struct{}
	for {
		s.skipSpace()
		if s.eof() {
			return v, nil
		}
		if s.buf[s.pos] == '}' {
			s.pos++
			v.Complete = true
			return v, nil
		}
		if len(v.Keys) > 0 {
			if s.buf[s.pos] != ',' {
				return nil, s.fail("expected ',' or '}' in object")
			}
			s.pos++
			s.skipSpace()
			if s.eof() {
				return v, nil
			}
		}
		if s.buf[s.pos] != '"' {
			return nil, s.fail("expected string key in object")
		}
		key, err := s.str()
		if err != nil {
			return nil, err
		}
		if !key.Complete {
			return v, nil
		}
		if err := s.checkDuplicate(&seen, key.Text); err != nil {
			return nil, err
		}
		v.Keys = append(v.Keys, key.Text)
		v.Members = append(v.Members, nil)
		s.skipSpace()
		if s.eof() {
			return v, nil
		}
		if s.buf[s.pos] != ':' {
			return nil, s.fail("expected ':' after object key")
		}
		s.pos++
		s.path = append(s.path, key.Text)
		member, err := s.value()
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return nil, err
		}
		if member == nil {
			return v, nil
		}
		v.Members[len(v.Members)-1] = member
		if !member.Complete {
			return v, nil
		}
	}
}

func (s *scanner) checkDuplicate(seen *map[string]struct{}, key string) error {
	if s.opt.OnDuplicate == DupIgnore {
		return nil
	}
	if *seen == nil {
		*seen = make(map[string]struct{})
	}
	if _, dup := (*seen)[key]; dup {
		path := strings.Join(append(append([]string(nil), s.path...), key), ".")
		si := SimpleIssue{Code: "duplicate_key", Path: path, Key: key, Message: "key '" + key + "' duplicated", Offset: s.pos}
		if s.opt.OnDuplicate == DupError {
			return IssueError{si}
		}
		if s.opt.IssueSink != nil {
			s.opt.IssueSink(si)
		}
	}
	(*seen)[key] = struct{}{}
	return nil
}

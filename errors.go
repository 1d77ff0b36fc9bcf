package skillet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/skillet/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeInvalidLiteral = "invalid_literal"
	CodeInvalidEnum    = "invalid_enum"
	CodeNoMatch        = "no_match"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
	CodeTrailingData   = "trailing_data"
	CodeSchemaMismatch = "schema_mismatch"
	CodeUnknownKey     = "unknown_key"
	CodeDuplicateKey   = "duplicate_key"
	// Schema document passes (import/emit)
	CodeUnsupportedKeyword = "unsupported_keyword"
	CodeInvalidKeyword     = "invalid_keyword"
	CodeInvalidSchema      = "invalid_schema"
)

// Issue represents a single validation or diagnostic entry.
type Issue struct {
	Path    string // Dotted path (for example: items.2.price). Empty for the root.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, keyword names, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input buffer (-1 when unknown).
	// InputFragment is an optional snippet of the offending input.
	InputFragment string
	// Params carries structured parameters (e.g., {"expected":"number", "actual":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at items.2
		fmt.Fprintf(b, "%s at %s", it.Code, renderPath(it.Path))
		if it.Message != "" && it.Message != it.Code {
			fmt.Fprintf(b, " (%s)", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

func renderPath(p string) string {
	if p == "" {
		return "root"
	}
	return p
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// JoinPath renders path segments as a dotted path.
func JoinPath(path []string) string { return strings.Join(path, ".") }

// newIssue builds an Issue with a localized message.
func newIssue(path []string, code string, params map[string]any) Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	return Issue{
		Path:    JoinPath(path),
		Code:    code,
		Message: i18n.T(code, data),
		Offset:  -1,
		Params:  params,
	}
}

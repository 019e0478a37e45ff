package world

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"ferlint/internal/logging"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"golang.org/x/text/unicode/runenames"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMalformedSource is returned when source text cannot be parsed.
var ErrMalformedSource = errors.New("malformed source")

// SyntaxError locates the first error or missing node in a parse tree.
type SyntaxError struct {
	Line   int
	Column int
	// Missing holds the node type tree-sitter inserted, empty for ERROR nodes.
	Missing string
	// Reason names a construct the grammar accepts but Python 3 rejects.
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed source: %s at %d:%d", e.Reason, e.Line, e.Column)
	}
	if e.Missing != "" {
		return fmt.Sprintf("malformed source: missing %q at %d:%d", e.Missing, e.Line, e.Column)
	}
	return fmt.Sprintf("malformed source: syntax error at %d:%d", e.Line, e.Column)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformedSource }

// PythonParser parses Python source into a Node tree.
// It uses Tree-sitter for accurate AST parsing.
type PythonParser struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *PythonParser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &PythonParser{parser: parser}
}

// Parse converts source into a Node tree rooted at a KindModule node.
// Any syntax error anywhere in the tree, or a construct Python 3 rejects,
// yields an error wrapping ErrMalformedSource.
func (p *PythonParser) Parse(ctx context.Context, source []byte) (*Node, error) {
	start := time.Now()
	source = bytes.TrimPrefix(source, utf8BOM)

	p.mu.Lock()
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	p.mu.Unlock()
	if err != nil {
		logging.Get(logging.CategoryWorld).Warnf("PythonParser: parse failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		serr := firstSyntaxError(root)
		logging.WorldDebug("PythonParser: %v", serr)
		return nil, serr
	}
	if serr := validatePython(root, source); serr != nil {
		logging.WorldDebug("PythonParser: %v", serr)
		return nil, serr
	}

	node := convert(root, source)
	logging.WorldDebug("PythonParser: parsed %d bytes into %d nodes in %v", len(source), Count(node), time.Since(start))
	return node, nil
}

// firstSyntaxError finds the earliest ERROR or MISSING node.
func firstSyntaxError(root *sitter.Node) *SyntaxError {
	var found *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	if found == nil {
		return &SyntaxError{Line: int(root.StartPoint().Row) + 1, Column: int(root.StartPoint().Column) + 1}
	}
	serr := &SyntaxError{
		Line:   int(found.StartPoint().Row) + 1,
		Column: int(found.StartPoint().Column) + 1,
	}
	if found.IsMissing() {
		serr.Missing = found.Type()
	}
	return serr
}

func convert(n *sitter.Node, src []byte) *Node {
	out := &Node{
		Type: n.Type(),
		Line: int(n.StartPoint().Row) + 1,
	}

	switch n.Type() {
	case "module":
		out.Kind = KindModule

	case "function_definition":
		// async def is a different statement in Python's AST.
		if isAsync(n) {
			break
		}
		out.Kind = KindFunctionDef
		if name := n.ChildByFieldName("name"); name != nil {
			out.Name = name.Content(src)
		}

	case "parameters", "lambda_parameters":
		out.Kind = KindParameters
		out.Defaults = positionalDefaults(n, src)

	case "binary_operator":
		out.Kind = KindBinaryOp
		if op := n.ChildByFieldName("operator"); op != nil {
			out.Operator = op.Type()
		}

	case "augmented_assignment":
		out.Kind = KindAugAssign
		if op := n.ChildByFieldName("operator"); op != nil {
			out.Operator = strings.TrimSuffix(op.Type(), "=")
		}

	// elif is a nested if statement in Python's own AST.
	case "if_statement", "elif_clause":
		out.Kind = KindIf

	case "return_statement":
		out.Kind = KindReturn

	case "call":
		out.Kind = KindCall
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "attribute" {
			if attr := fn.ChildByFieldName("attribute"); attr != nil {
				out.Callee = attr.Content(src)
			}
		}

	case "interpolation":
		out.Kind = KindInterpolation
	}

	count := int(n.NamedChildCount())
	if count > 0 {
		out.Children = make([]*Node, 0, count)
	}
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			out.Children = append(out.Children, convert(child, src))
		}
	}
	return out
}

func isAsync(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || c.IsNamed() {
			continue
		}
		switch c.Type() {
		case "async":
			return true
		case "def":
			return false
		}
	}
	return false
}

// positionalDefaults returns the defaults of parameters that precede any
// "*", "*args" or "**kwargs" marker. Keyword-only defaults are excluded.
func positionalDefaults(params *sitter.Node, src []byte) []Literal {
	var defaults []Literal
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator", "*", "**":
			return defaults
		case "default_parameter", "typed_default_parameter":
			if value := child.ChildByFieldName("value"); value != nil {
				defaults = append(defaults, literalOf(value, src))
			}
		}
	}
	return defaults
}

// literalOf captures a default value, decoding it when it is a plain string.
func literalOf(n *sitter.Node, src []byte) Literal {
	if s, ok := stringValue(n, src); ok {
		return Literal{Kind: LiteralString, Value: s}
	}
	return Literal{Kind: LiteralOther, Value: n.Content(src)}
}

func stringValue(n *sitter.Node, src []byte) (string, bool) {
	switch n.Type() {
	case "string":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil && c.Type() == "interpolation" {
				return "", false
			}
		}
		return decodeStringLiteral(n.Content(src))

	case "concatenated_string":
		var sb strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			part, ok := stringValue(n.NamedChild(i), src)
			if !ok {
				return "", false
			}
			sb.WriteString(part)
		}
		return sb.String(), true

	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return stringValue(n.NamedChild(0), src)
		}
	}
	return "", false
}

// decodeStringLiteral decodes a Python str literal including its prefix and
// quotes. Bytes and f-string literals are rejected.
func decodeStringLiteral(text string) (string, bool) {
	i := strings.IndexAny(text, `'"`)
	if i < 0 {
		return "", false
	}
	prefix := strings.ToLower(text[:i])
	if strings.ContainsAny(prefix, "bf") {
		return "", false
	}
	raw := strings.Contains(prefix, "r")

	body := text[i:]
	quote := body[:1]
	switch {
	case len(body) >= 6 && strings.HasPrefix(body, strings.Repeat(quote, 3)):
		body = body[3 : len(body)-3]
	case len(body) >= 2:
		body = body[1 : len(body)-1]
	default:
		return "", false
	}

	if raw {
		return body, true
	}
	return unescape(body)
}

var escapeWidth = map[byte]int{'x': 2, 'u': 4, 'U': 8}

var simpleEscapes = map[byte]byte{
	'\\': '\\', '\'': '\'', '"': '"',
	'n': '\n', 't': '\t', 'r': '\r',
	'a': '\a', 'b': '\b', 'f': '\f', 'v': '\v',
}

// unescape decodes the escapes of a non-raw str literal body. It reports
// false for escapes CPython refuses to compile, such as an unknown \N name.
func unescape(s string) (string, bool) {
	if !strings.Contains(s, `\`) {
		return s, true
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		e := s[i]
		if b, ok := simpleEscapes[e]; ok {
			sb.WriteByte(b)
			continue
		}
		switch {
		case e == '\n':
			// line continuation
		case isOctal(e):
			end := i + 1
			for end < len(s) && end < i+3 && isOctal(s[end]) {
				end++
			}
			v, _ := strconv.ParseUint(s[i:end], 8, 32)
			sb.WriteRune(rune(v))
			i = end - 1
		case escapeWidth[e] > 0:
			end := i + 1 + escapeWidth[e]
			if end > len(s) {
				return "", false
			}
			r, err := strconv.ParseUint(s[i+1:end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(r)) {
				return "", false
			}
			sb.WriteRune(rune(r))
			i = end - 1
		case e == 'N':
			closing := strings.IndexByte(s[i:], '}')
			if i+1 >= len(s) || s[i+1] != '{' || closing < 0 {
				return "", false
			}
			r, ok := lookupRuneName(s[i+2 : i+closing])
			if !ok {
				return "", false
			}
			sb.WriteRune(r)
			i += closing
		default:
			// Unknown escapes are kept verbatim.
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String(), true
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

var (
	runeNamesOnce sync.Once
	runeNames     map[string]rune
)

const cjkIdeographPrefix = "CJK UNIFIED IDEOGRAPH-"

// lookupRuneName resolves a \N{...} name case-insensitively.
func lookupRuneName(name string) (rune, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if hex, ok := strings.CutPrefix(name, cjkIdeographPrefix); ok {
		r, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !unicode.Is(unicode.Unified_Ideograph, rune(r)) {
			return 0, false
		}
		return rune(r), true
	}

	runeNamesOnce.Do(func() {
		runeNames = make(map[string]rune, 40000)
		for r := rune(0); r <= unicode.MaxRune; r++ {
			if n := runenames.Name(r); n != "" && n[0] != '<' {
				runeNames[n] = r
			}
		}
	})
	r, ok := runeNames[name]
	return r, ok
}

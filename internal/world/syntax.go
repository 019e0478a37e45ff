package world

// NodeKind classifies a syntax node by the constructs the analyzer cares about.
// Everything else is KindOther and is still walked.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindModule
	KindFunctionDef
	KindParameters
	KindBinaryOp
	KindAugAssign
	KindIf
	KindReturn
	KindCall
	KindInterpolation
)

var kindNames = map[NodeKind]string{
	KindOther:         "other",
	KindModule:        "module",
	KindFunctionDef:   "function_def",
	KindParameters:    "parameters",
	KindBinaryOp:      "binary_op",
	KindAugAssign:     "aug_assign",
	KindIf:            "if",
	KindReturn:        "return",
	KindCall:          "call",
	KindInterpolation: "interpolation",
}

func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// LiteralKind tells whether a default value is a plain string literal.
type LiteralKind int

const (
	// LiteralOther covers every non-string expression, bytes and f-strings.
	LiteralOther LiteralKind = iota
	LiteralString
)

// Literal is a captured default-argument value.
type Literal struct {
	Kind LiteralKind
	// Value is the decoded string for LiteralString and the source text otherwise.
	Value string
}

// IsString reports whether the literal is the string s.
func (l Literal) IsString(s string) bool {
	return l.Kind == LiteralString && l.Value == s
}

// Node is a language-neutral syntax node.
//
// Only the attributes relevant to the node's Kind are populated: Name for
// function definitions, Operator for binary and augmented operators (the
// augmented "+=" is stored as "+"), Callee for calls whose target is an
// attribute access, Defaults for parameter lists.
type Node struct {
	Kind NodeKind
	// Type is the grammar's node type, kept for debugging.
	Type     string
	Name     string
	Operator string
	Callee   string
	Defaults []Literal
	// Line is 1-based.
	Line     int
	Children []*Node
}

// Walk visits root and every descendant exactly once, pre-order.
func Walk(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c != nil {
				stack = append(stack, c)
			}
		}
	}
}

// Count returns the number of nodes under root, root included.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node) { n++ })
	return n
}

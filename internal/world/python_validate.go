package world

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// validatePython rejects constructs the tree-sitter grammar accepts but
// CPython 3 does not: Python 2 statements and operators, bare walrus
// statements and inconsistent indentation.
func validatePython(root *sitter.Node, src []byte) *SyntaxError {
	v := &validator{src: src}
	v.visit(root)
	if v.err != nil {
		return v.err
	}
	return v.checkBackticks(root)
}

type validator struct {
	src []byte
	err *SyntaxError
}

func (v *validator) fail(n *sitter.Node, reason string) {
	if v.err != nil {
		return
	}
	v.err = &SyntaxError{
		Line:   int(n.StartPoint().Row) + 1,
		Column: int(n.StartPoint().Column) + 1,
		Reason: reason,
	}
}

func (v *validator) visit(n *sitter.Node) {
	if n == nil || v.err != nil {
		return
	}

	switch n.Type() {
	case "module":
		v.checkIndentation(n, 0)

	case "block":
		v.checkBlock(n)

	case "print_statement":
		if !isCallLikePrint(n) {
			v.fail(n, "Python 2 print statement")
		}

	case "exec_statement":
		v.fail(n, "Python 2 exec statement")

	case "string":
		// The grammar lexes Python 2 `repr` as a string delimited by backticks.
		if strings.HasPrefix(strings.TrimLeft(n.Content(v.src), "rRbBuUfF"), "`") {
			v.fail(n, "backtick repr")
		}

	case "comparison_operator":
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil && c.Type() == "<>" {
				v.fail(c, "'<>' operator")
			}
		}

	case "expression_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil && c.Type() == "named_expression" {
				v.fail(c, "unparenthesized ':=' statement")
			}
		}

	case "assignment", "augmented_assignment":
		if right := n.ChildByFieldName("right"); right != nil && right.Type() == "named_expression" {
			v.fail(right, "unparenthesized ':=' in assignment")
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.visit(n.NamedChild(i))
	}
}

// isCallLikePrint reports whether a print statement is also a valid
// Python 3 call, e.g. print ("x") or print (a, b).
func isCallLikePrint(n *sitter.Node) bool {
	var args []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		if c.Type() == "chevron" {
			return false
		}
		args = append(args, c)
	}
	if len(args) != 1 || n.ChildCount() != 2 {
		return false
	}
	switch args[0].Type() {
	case "parenthesized_expression", "tuple", "generator_expression":
		return true
	}
	return false
}

// checkBlock requires the block to be indented past its header and every
// statement in it to share one indentation.
func (v *validator) checkBlock(block *sitter.Node) {
	first := firstStatement(block)
	if first == nil {
		return
	}
	header := block.Parent()
	if header != nil && first.StartPoint().Row == header.StartPoint().Row {
		// one-line suite: def f(): return x
		return
	}
	column := first.StartPoint().Column
	if header != nil && column <= header.StartPoint().Column {
		v.fail(first, "expected an indented block")
		return
	}
	v.checkIndentation(block, column)
}

// checkIndentation requires every statement that starts a line to start at column.
func (v *validator) checkIndentation(parent *sitter.Node, column uint32) {
	var prev *sitter.Node
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		stmt := parent.NamedChild(i)
		if stmt == nil || stmt.Type() == "comment" {
			continue
		}
		startsLine := prev == nil || stmt.StartPoint().Row != prev.EndPoint().Row
		prev = stmt
		if startsLine && stmt.StartPoint().Column != column {
			v.fail(stmt, "unexpected indentation")
			return
		}
	}
}

func firstStatement(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil && c.Type() != "comment" {
			return c
		}
	}
	return nil
}

// checkBackticks rejects Python 2 repr backticks outside strings and comments.
func (v *validator) checkBackticks(root *sitter.Node) *SyntaxError {
	type span struct{ start, end uint32 }
	var skip []span
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "string", "comment":
			skip = append(skip, span{n.StartByte(), n.EndByte()})
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			collect(n.NamedChild(i))
		}
	}
	collect(root)

	line, col := 1, 1
	next := 0
	for i := 0; i < len(v.src); i++ {
		for next < len(skip) && uint32(i) >= skip[next].end {
			next++
		}
		inSkip := next < len(skip) && uint32(i) >= skip[next].start
		c := v.src[i]
		if c == '`' && !inSkip {
			return &SyntaxError{Line: line, Column: col, Reason: "backtick repr"}
		}
		if c == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
	}
	return nil
}

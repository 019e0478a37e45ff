package analyzer

import (
	"ferlint/internal/logging"
	"ferlint/internal/world"
)

const (
	exerciseFunction = "two_fer"
	expectedDefault  = "you"
)

// features are the flags accumulated while walking one tree.
type features struct {
	hasFunction                bool
	usesDefaultArgument        bool
	hasReturn                  bool
	usesFormatMethod           bool
	usesFormattedStringLiteral bool
}

// walkState is the per-analysis accumulator shared by the node checks.
type walkState struct {
	features
	comments *commentList
}

func newWalkState() *walkState {
	return &walkState{comments: newCommentList()}
}

// nodeCheck inspects a single node. Every check sees every node.
type nodeCheck struct {
	name  string
	check func(s *walkState, n *world.Node)
}

var nodeChecks = []nodeCheck{
	{"function_name", func(s *walkState, n *world.Node) {
		if n.Kind == world.KindFunctionDef && n.Name == exerciseFunction {
			s.hasFunction = true
		}
	}},
	{"concatenation", func(s *walkState, n *world.Node) {
		if isOperator(n, "+") {
			s.comments.add(SimpleConcat)
		}
	}},
	{"default_argument", func(s *walkState, n *world.Node) {
		if n.Kind != world.KindParameters || len(n.Defaults) == 0 {
			return
		}
		s.usesDefaultArgument = true
		if !n.Defaults[0].IsString(expectedDefault) {
			s.comments.add(WrongDefaultArgument)
		}
	}},
	{"conditional", func(s *walkState, n *world.Node) {
		if n.Kind == world.KindIf {
			s.comments.add(Conditionals)
		}
	}},
	{"percent_formatting", func(s *walkState, n *world.Node) {
		if isOperator(n, "%") {
			s.comments.add(PercentFormatting)
		}
	}},
	{"return", func(s *walkState, n *world.Node) {
		if n.Kind == world.KindReturn {
			s.hasReturn = true
		}
	}},
	{"format_method", func(s *walkState, n *world.Node) {
		if n.Kind == world.KindCall && n.Callee == "format" {
			s.usesFormatMethod = true
		}
	}},
	{"formatted_string", func(s *walkState, n *world.Node) {
		if n.Kind == world.KindInterpolation {
			s.usesFormattedStringLiteral = true
		}
	}},
}

func isOperator(n *world.Node, op string) bool {
	return (n.Kind == world.KindBinaryOp || n.Kind == world.KindAugAssign) && n.Operator == op
}

// visit runs every check against n. A check that panics counts as no match
// for that node only.
func (s *walkState) visit(n *world.Node) {
	for _, c := range nodeChecks {
		s.runCheck(c, n)
	}
}

func (s *walkState) runCheck(c nodeCheck, n *world.Node) {
	defer func() {
		if r := recover(); r != nil {
			logging.AnalyzerDebug("check %s skipped %s node at line %d: %v", c.name, n.Type, n.Line, r)
		}
	}()
	c.check(s, n)
}

// finish applies the post-walk checks and returns the verdict.
func (s *walkState) finish() (approvable bool) {
	approvable = true
	if !s.hasFunction {
		s.comments.add(NoMethod)
		approvable = false
	}
	if !s.usesDefaultArgument {
		s.comments.add(NoDefaultArgument)
	}
	if !s.hasReturn {
		s.comments.add(NoReturn)
		approvable = false
	}
	return approvable
}

func (s *walkState) usesOptimalFormatting() bool {
	return s.usesFormatMethod || s.usesFormattedStringLiteral
}

package analyzer

// CommentKind identifies one piece of fixed feedback.
type CommentKind int

const (
	NoModule CommentKind = iota
	NoMethod
	MalformedCode
	SimpleConcat
	NoDefaultArgument
	Conditionals
	NoReturn
	WrongDefaultArgument
	PercentFormatting
)

// Messages maps every CommentKind to the text shown to the student.
var Messages = map[CommentKind]string{
	NoModule:      "No module called two_fer.py found in file path.",
	NoMethod:      "No method called two_fer.",
	MalformedCode: "The code is malformed and cannot be parsed for analysis.",
	SimpleConcat: "String concatenation with the + operator is a valid approach, but f-strings and str.format " +
		"offer more functionality and elegant solutions.",
	NoDefaultArgument: "No default arguments are used in this solution. An ideal solution should make use of a " +
		"default argument and either f-strings or str.format.",
	Conditionals: "Conditionals are unnecessarily used in this solution. An ideal solution should make use of a " +
		"default argument and either f-strings or str.format.",
	NoReturn: "'return' is not used to return the result string. This solution should fail pytest. Try run " +
		"'pytest' inside the two-fer directory and observe the pass/fail results.",
	WrongDefaultArgument: "A value other than 'you' is used as a default argument.",
	PercentFormatting: "%-formatting is a valid approach, but f-strings and str.format offer more functionality " +
		"and elegant solutions.",
}

// Message returns the feedback text for k.
func (k CommentKind) Message() string {
	return Messages[k]
}

func (k CommentKind) String() string {
	switch k {
	case NoModule:
		return "no_module"
	case NoMethod:
		return "no_method"
	case MalformedCode:
		return "malformed_code"
	case SimpleConcat:
		return "simple_concat"
	case NoDefaultArgument:
		return "no_def_arg"
	case Conditionals:
		return "conditionals"
	case NoReturn:
		return "no_return"
	case WrongDefaultArgument:
		return "wrong_def_arg"
	case PercentFormatting:
		return "percent_formatting"
	}
	return "unknown"
}

// commentList is an insertion-ordered set of comments.
type commentList struct {
	kinds []CommentKind
	seen  map[CommentKind]bool
}

func newCommentList() *commentList {
	return &commentList{seen: make(map[CommentKind]bool)}
}

// add appends k unless it is already present.
func (c *commentList) add(k CommentKind) {
	if c.seen[k] {
		return
	}
	c.seen[k] = true
	c.kinds = append(c.kinds, k)
}

func (c *commentList) empty() bool { return len(c.kinds) == 0 }

func (c *commentList) messages() []string {
	out := make([]string, 0, len(c.kinds))
	for _, k := range c.kinds {
		out = append(out, k.Message())
	}
	return out
}

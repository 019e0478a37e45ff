package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestWalk_PreOrderVisitsEveryNodeOnce(t *testing.T) {
	root := &Node{Type: "a", Children: []*Node{
		{Type: "b", Children: []*Node{{Type: "c"}, {Type: "d"}}},
		nil,
		{Type: "e"},
	}}

	var got []string
	Walk(root, func(n *Node) { got = append(got, n.Type) })

	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, got); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, Count(root))
}

func TestWalk_NilRoot(t *testing.T) {
	called := false
	Walk(nil, func(*Node) { called = true })
	assert.False(t, called)
}

func TestLiteral_IsString(t *testing.T) {
	assert.True(t, Literal{Kind: LiteralString, Value: "you"}.IsString("you"))
	assert.False(t, Literal{Kind: LiteralOther, Value: "you"}.IsString("you"))
	assert.False(t, Literal{Kind: LiteralString, Value: "me"}.IsString("you"))
}

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "function_def", KindFunctionDef.String())
	assert.Equal(t, "unknown", NodeKind(99).String())
}

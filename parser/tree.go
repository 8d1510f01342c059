package parser

import "github.com/loom-lang/loom/token"

// NodeKind discriminates the payload and meaning of a Node.
type NodeKind uint8

const (
	NodeClass NodeKind = iota
	NodeMethod
	NodeField
	NodeVariable
	NodeExpression
	NodeType
	NodeBlock
	NodeReturn
	NodeIf
	NodeLoop
	NodeBinaryOp
	NodeUnaryOp
	NodeLiteral
	NodeIdentifier
)

// String returns the canonical name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeClass:
		return "Class"
	case NodeMethod:
		return "Method"
	case NodeField:
		return "Field"
	case NodeVariable:
		return "Variable"
	case NodeExpression:
		return "Expression"
	case NodeType:
		return "Type"
	case NodeBlock:
		return "Block"
	case NodeReturn:
		return "Return"
	case NodeIf:
		return "If"
	case NodeLoop:
		return "Loop"
	case NodeBinaryOp:
		return "BinaryOp"
	case NodeUnaryOp:
		return "UnaryOp"
	case NodeLiteral:
		return "Literal"
	case NodeIdentifier:
		return "Identifier"
	default:
		return "Unknown"
	}
}

// Node is one vertex of the IR tree. Each node exclusively owns its
// children; the tree is acyclic and single rooted. Payload fields are
// kind-dependent:
//
//   - Identifier and string Literal nodes carry decoded text in Text.
//   - Type nodes carry the base type name in Text, generic arguments as
//     child Type nodes.
//   - Numeric Literal nodes carry the decoded value in Num, boolean
//     Literal nodes carry Bool.
//   - BinaryOp and UnaryOp nodes carry the operator token kind in Op.
//   - Method, Field and Variable nodes carry their leading keyword
//     (visibility, or var/const) in Op when one was written.
//
// Text payloads are copies; a Node never references the source buffer it
// was parsed from.
type Node struct {
	Kind     NodeKind   `json:"kind" cbor:"1,keyasint"`
	Op       token.Kind `json:"op,omitempty" cbor:"2,keyasint,omitempty"`
	Text     string     `json:"text,omitempty" cbor:"3,keyasint,omitempty"`
	Num      float64    `json:"num,omitempty" cbor:"4,keyasint,omitempty"`
	Bool     bool       `json:"bool,omitempty" cbor:"5,keyasint,omitempty"`
	Children []*Node    `json:"children,omitempty" cbor:"6,keyasint,omitempty"`
}

// Release detaches the whole subtree below n so each node becomes
// individually collectable. Traversal is by explicit stack; node depth is
// bounded by the parser but released trees may be stitched together by
// callers into shapes deeper than the parse limit.
func (n *Node) Release() {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, node.Children...)
		node.Children = nil
	}
}

// Walk calls fn for n and every descendant in depth-first order, passing
// the node's depth below n. Walking stops early if fn returns false.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) bool {
	if n == nil {
		return true
	}
	if !fn(n, depth) {
		return false
	}
	for _, child := range n.Children {
		if !child.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Find returns the first node of the given kind in depth-first order, or
// nil if the subtree holds none.
func (n *Node) Find(kind NodeKind) *Node {
	var found *Node
	n.Walk(func(node *Node, depth int) bool {
		if node.Kind == kind {
			found = node
			return false
		}
		return true
	})
	return found
}

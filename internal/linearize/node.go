package linearize

import "strconv"

// Node is a read-only content tree value. Concrete variants are Text, Number,
// Sequence, Composite, and Opaque; a nil Node carries no translatable text.
type Node interface {
	isNode()
}

// Text is a translatable string leaf.
type Text string

// Number is a numeric leaf. It is rendered without an exponent so repeated
// flattening of the same tree stays byte-identical.
type Number float64

// Sequence holds ordered children. Traversal appends each child's decimal
// index to the parent key; sequences are the only variant that extends the
// positional path.
type Sequence []Node

// Composite wraps a child tree without consuming a path segment. Children may
// be a single Node, a Sequence, or nil.
type Composite struct {
	Children Node
}

// Opaque marks a node shape the linearizer does not recognise. It flattens to
// the empty string.
type Opaque struct{}

func (Text) isNode()      {}
func (Number) isNode()    {}
func (Sequence) isNode()  {}
func (Composite) isNode() {}
func (Opaque) isNode()    {}

// String renders the leaf value exactly as it appears in wrapped output.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

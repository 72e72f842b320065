package linearize

import (
	"strconv"
	"strings"
)

// DefaultBaseKey is the positional root assigned to a tree when the caller
// does not supply one.
const DefaultBaseKey = "0"

// Segment is a single leaf captured during traversal: the positional id and
// the leaf's rendered value. Segments preserve traversal order, so a segment
// list is the structured form of the flattened string.
type Segment struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Document is the structured result of linearizing a content tree. Two trees
// with identical structure and leaf values produce equal documents.
type Document []Segment

// Wrap tags a single value with its positional id.
func Wrap(value, key string) string {
	return "<" + key + ">" + value + "</" + key + ">"
}

// Flatten converts a content tree into one flat string where every leaf is
// wrapped with its positional id. Absent, empty, and unrecognised nodes
// flatten to the empty string. The result is deterministic for an unchanged
// tree.
func Flatten(node Node, baseKey string) string {
	segments := Segments(node, baseKey)
	if len(segments) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, segment := range segments {
		sb.WriteString(Wrap(segment.Value, segment.ID))
	}
	return sb.String()
}

// Segments walks the tree and collects every leaf with its positional id.
// Sequence traversal appends the child's decimal index to the parent key with
// no separator; composite nodes recurse under the same key. One exception:
// the leading leaf, reached through index-0 positions only, keeps the bare
// base key, so the first fragment of a document is always addressable at the
// base key itself. `["Hello", ["World", 42]]` under base "0" therefore yields
// ids 0, 010 and 011, not 00, 010 and 011.
func Segments(node Node, baseKey string) Document {
	if baseKey == "" {
		baseKey = DefaultBaseKey
	}
	return appendSegments(nil, node, baseKey, baseKey)
}

// appendSegments threads two keys: the accumulated positional key and the id
// to emit if the current node turns out to be the leading leaf. lead is empty
// once traversal has left the index-0 spine.
func appendSegments(doc Document, node Node, key, lead string) Document {
	switch n := node.(type) {
	case nil:
		return doc
	case Text:
		return append(doc, Segment{ID: leafID(key, lead), Value: string(n)})
	case Number:
		return append(doc, Segment{ID: leafID(key, lead), Value: n.String()})
	case Sequence:
		for i, child := range n {
			childLead := ""
			if i == 0 {
				childLead = lead
			}
			doc = appendSegments(doc, child, key+strconv.Itoa(i), childLead)
		}
		return doc
	case Composite:
		return appendSegments(doc, n.Children, key, lead)
	default:
		// Opaque and any future variant carry no translatable text.
		return doc
	}
}

func leafID(key, lead string) string {
	if lead != "" {
		return lead
	}
	return key
}

// Flat renders the document back into its wrapped string form.
func (d Document) Flat() string {
	var sb strings.Builder
	for _, segment := range d {
		sb.WriteString(Wrap(segment.Value, segment.ID))
	}
	return sb.String()
}

package jsonconf

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// NodeType discriminates what a Node holds.
type NodeType int

const (
	NullNode NodeType = iota
	StringNode
	NumberNode
	BoolNode
	ObjectNode
	ArrayNode
)

// Node is one value in a parsed configuration tree. Subtrees pulled in
// through $include are flagged Included and remember the path as written
// in the including file.
type Node struct {
	Type        NodeType
	Str         string
	Num         float64
	Bool        bool
	Children    map[string]*Node
	Elements    []*Node
	Included    bool
	IncludePath string
}

func NewNull() *Node            { return &Node{Type: NullNode} }
func NewString(s string) *Node  { return &Node{Type: StringNode, Str: s} }
func NewNumber(f float64) *Node { return &Node{Type: NumberNode, Num: f} }
func NewBool(b bool) *Node      { return &Node{Type: BoolNode, Bool: b} }

func NewObject() *Node {
	return &Node{Type: ObjectNode, Children: make(map[string]*Node)}
}

func NewArray() *Node {
	return &Node{Type: ArrayNode}
}

// Add sets key to child on an object node.
func (n *Node) Add(key string, child *Node) {
	if n.Children == nil {
		n.Children = make(map[string]*Node)
	}
	n.Children[key] = child
}

// Append adds an element to an array node.
func (n *Node) Append(el *Node) {
	n.Elements = append(n.Elements, el)
}

// Child returns the named child of an object node, nil when absent or
// when n is not an object.
func (n *Node) Child(key string) *Node {
	if n == nil || n.Type != ObjectNode {
		return nil
	}
	return n.Children[key]
}

// Element returns the i-th element of an array node, nil when out of
// range or when n is not an array.
func (n *Node) Element(i int) *Node {
	if n == nil || n.Type != ArrayNode || i < 0 || i >= len(n.Elements) {
		return nil
	}
	return n.Elements[i]
}

// StringOr returns the string value, or def when n is nil or not a
// string.
func (n *Node) StringOr(def string) string {
	if n == nil || n.Type != StringNode {
		return def
	}
	return n.Str
}

// NumberOr returns the numeric value, or def when n is nil or not a
// number.
func (n *Node) NumberOr(def float64) float64 {
	if n == nil || n.Type != NumberNode {
		return def
	}
	return n.Num
}

// BoolOr returns the boolean value, or def when n is nil or not a
// boolean.
func (n *Node) BoolOr(def bool) bool {
	if n == nil || n.Type != BoolNode {
		return def
	}
	return n.Bool
}

// JSON renders the subtree as indented JSON with object keys sorted, so
// equal trees always serialize identically.
func (n *Node) JSON() string {
	var b strings.Builder
	writeJSON(&b, n, 0)
	return b.String()
}

// Dump writes a tree listing of the subtree to w, annotating included
// subtrees with their source path.
func (n *Node) Dump(w io.Writer) {
	dumpNode(w, n, 0)
}

func writeJSON(b *strings.Builder, n *Node, indent int) {
	pad := strings.Repeat("  ", indent)

	switch n.Type {
	case NullNode:
		b.WriteString("null")
	case StringNode:
		b.WriteString(`"` + escapeString(n.Str) + `"`)
	case NumberNode:
		b.WriteString(formatNumber(n.Num))
	case BoolNode:
		b.WriteString(strconv.FormatBool(n.Bool))
	case ArrayNode:
		if len(n.Elements) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, el := range n.Elements {
			b.WriteString(pad + "  ")
			writeJSON(b, el, indent+1)
			if i < len(n.Elements)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "]")
	case ObjectNode:
		if len(n.Children) == 0 {
			b.WriteString("{}")
			return
		}
		keys := sortedKeys(n.Children)
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(pad + `  "` + escapeString(k) + `": `)
			writeJSON(b, n.Children[k], indent+1)
			if i < len(keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "}")
	}
}

func dumpNode(w io.Writer, n *Node, indent int) {
	pad := strings.Repeat("  ", indent)
	info := ""
	if n.Included {
		info = fmt.Sprintf(" [included from: %s]", n.IncludePath)
	}

	switch n.Type {
	case NullNode:
		fmt.Fprintf(w, "%snull%s\n", pad, info)
	case StringNode:
		fmt.Fprintf(w, "%s%q%s\n", pad, n.Str, info)
	case NumberNode:
		fmt.Fprintf(w, "%s%s%s\n", pad, formatNumber(n.Num), info)
	case BoolNode:
		fmt.Fprintf(w, "%s%t%s\n", pad, n.Bool, info)
	case ArrayNode:
		fmt.Fprintf(w, "%s[%s\n", pad, info)
		for _, el := range n.Elements {
			dumpNode(w, el, indent+1)
		}
		fmt.Fprintf(w, "%s]\n", pad)
	case ObjectNode:
		fmt.Fprintf(w, "%s{%s\n", pad, info)
		for _, k := range sortedKeys(n.Children) {
			fmt.Fprintf(w, "%s  %q:\n", pad, k)
			dumpNode(w, n.Children[k], indent+2)
		}
		fmt.Fprintf(w, "%s}\n", pad)
	}
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatNumber keeps integral values free of decimal noise.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

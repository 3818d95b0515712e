package synx

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a canonical reconstruction of the tree: leaf text is copied
// from the pattern, each capturing group is re-wrapped in one pair of
// parentheses per group index, and repeats are re-emitted as *, +, ? or a
// {m,n} count. It is not a byte-for-byte echo of the original pattern ("a{1,}"
// prints as "a+"), but a form that parses back to an equivalent tree. It
// exists for debugging and tests, not as part of the matching path.
func Print(t *Tree) string {
	if t == nil || t.Root == nil {
		return ""
	}
	var sb strings.Builder
	printNode(&sb, t, t.Root)
	return sb.String()
}

func printNode(sb *strings.Builder, t *Tree, n *Node) {
	if n == nil {
		return
	}

	open, close := "", ""
	if k := len(n.GroupIndexes); k > 0 {
		open, close = strings.Repeat("(", k), strings.Repeat(")", k)
	}

	switch n.Kind {
	case KindEmpty:
		sb.WriteString(open)
		sb.WriteString(close)

	case KindLeaf:
		sb.WriteString(open)
		sb.Write(t.Pattern[n.Start:n.End])
		sb.WriteString(close)

	case KindConcat:
		sb.WriteString(open)
		printNode(sb, t, n.Left)
		printNode(sb, t, n.Right)
		sb.WriteString(close)

	case KindOr:
		sb.WriteString(open)
		printNode(sb, t, n.Left)
		sb.WriteByte('|')
		printNode(sb, t, n.Right)
		sb.WriteString(close)

	case KindStar:
		sb.WriteString(open)
		printNode(sb, t, n.Left)
		sb.WriteString(repeatSuffix(n.Min, n.Max))
		sb.WriteString(close)
	}
}

func repeatSuffix(min, max int) string {
	const unbounded = -1
	switch {
	case min == 0 && max == unbounded:
		return "*"
	case min == 1 && max == unbounded:
		return "+"
	case min == 0 && max == 1:
		return "?"
	case max == unbounded:
		return "{" + strconv.Itoa(min) + ",}"
	case min == max:
		return "{" + strconv.Itoa(min) + "}"
	default:
		return fmt.Sprintf("{%d,%d}", min, max)
	}
}

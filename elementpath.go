package vitalz

import "strings"

const (
	maxTraverseHeight = 5
	maxPathLength     = 80
	pathSeparator     = " > "
)

// pathAttributes are the attributes rendered into an element path.
var pathAttributes = []string{"aria-label", "type", "name", "title", "alt"}

// NodeDescriber renders nodes as CSS-selector-like ancestor paths, e.g.
// "body > div#app > button.primary[type=\"submit\"]".
type NodeDescriber struct{}

// ElementPath renders n and up to four ancestors, innermost last, stopping at
// the html element or when the path would grow beyond 80 characters.
func (NodeDescriber) ElementPath(n *Node) string {
	if n == nil {
		return "<unknown>"
	}

	var parts []string
	total := 0
	for cur, height := n, 0; cur != nil && height < maxTraverseHeight; cur, height = cur.Parent, height+1 {
		next := describeNode(cur)
		if next == "html" {
			break
		}
		if next == "" {
			continue
		}
		if height > 0 && total+len(parts)*len(pathSeparator)+len(next) >= maxPathLength {
			break
		}
		parts = append(parts, next)
		total += len(next)
	}

	if len(parts) == 0 {
		return "<unknown>"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, pathSeparator)
}

// ComponentName returns the nearest framework component annotation on n or
// its ancestors.
func (NodeDescriber) ComponentName(n *Node) string {
	for cur, height := n, 0; cur != nil && height < maxTraverseHeight; cur, height = cur.Parent, height+1 {
		if cur.Component != "" {
			return cur.Component
		}
	}
	return ""
}

func describeNode(n *Node) string {
	if n.Tag == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(n.Tag))
	if n.ID != "" {
		b.WriteString("#")
		b.WriteString(n.ID)
	}
	for _, c := range n.Classes {
		if c == "" {
			continue
		}
		b.WriteString(".")
		b.WriteString(c)
	}
	for _, key := range pathAttributes {
		if v, ok := n.Attributes[key]; ok && v != "" {
			b.WriteString(`[` + key + `="` + v + `"]`)
		}
	}
	return b.String()
}

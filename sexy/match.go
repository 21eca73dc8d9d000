package sexy

import (
	"fmt"
	"strconv"
)

// Match reports whether actual has the shape described by pattern. In a
// pattern the symbol _ matches any single datum, and ... inside a list
// matches any number of items (including none). Numbers compare by value,
// so 1 matches 1.0.
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeSymbol && pattern.Text == "_" {
		return nil
	}
	if pattern.Type != actual.Type {
		return fmt.Errorf("%s: expected %s, got %s", path, pattern, actual)
	}

	switch pattern.Type {
	case NodeNumber:
		want, err1 := pattern.Float()
		got, err2 := actual.Float()
		if err1 != nil || err2 != nil || want != got {
			return fmt.Errorf("%s: expected %s, got %s", path, pattern, actual)
		}
		return nil
	case NodeList:
		if !matchItems(pattern.Items, actual.Items, path) {
			return explainList(pattern, actual, path)
		}
		return nil
	default:
		if pattern.Text != actual.Text {
			return fmt.Errorf("%s: expected %s, got %s", path, pattern, actual)
		}
		return nil
	}
}

func matchItems(pats, items []*Node, path string) bool {
	if len(pats) == 0 {
		return len(items) == 0
	}
	if pats[0].Type == NodeEllipsis {
		for skip := 0; skip <= len(items); skip++ {
			if matchItems(pats[1:], items[skip:], path) {
				return true
			}
		}
		return false
	}
	if len(items) == 0 {
		return false
	}
	if match(pats[0], items[0], path) != nil {
		return false
	}
	return matchItems(pats[1:], items[1:], path)
}

// explainList finds the first item that makes a list mismatch, for a more
// useful failure message than the two whole lists.
func explainList(pattern, actual *Node, path string) error {
	for i, p := range pattern.Items {
		if p.Type == NodeEllipsis {
			break
		}
		if i >= len(actual.Items) {
			return fmt.Errorf("%s: expected %s, got %s (missing item %d)", path, pattern, actual, i)
		}
		if err := match(p, actual.Items[i], path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s: expected %s, got %s", path, pattern, actual)
}

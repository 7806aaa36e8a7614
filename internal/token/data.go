package token

import "strings"

// reservedLeaf is never zero-filled; it names the hash helper.
const reservedLeaf = "hash"

// Filler builds a data tree in which every token resolves to zero, so a
// file can be rendered into a parseable shape before real values exist.
func Filler(tokens []string) map[string]any {
	root := map[string]any{}
	for _, tok := range tokens {
		levels := strings.Split(tok, ".")
		node := root
		for _, level := range levels[:len(levels)-1] {
			next, ok := node[level].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[level] = next
			}
			node = next
		}
		last := levels[len(levels)-1]
		if last == reservedLeaf {
			continue
		}
		if _, exists := node[last]; !exists {
			node[last] = 0
		}
	}
	return root
}

// Lookup walks a dotted path into data.
func Lookup(data map[string]any, tok string) (any, bool) {
	var node any = data
	for _, level := range strings.Split(tok, ".") {
		switch m := node.(type) {
		case map[string]any:
			v, ok := m[level]
			if !ok {
				return nil, false
			}
			node = v
		case map[string]string:
			v, ok := m[level]
			if !ok {
				return nil, false
			}
			node = v
		default:
			return nil, false
		}
	}
	return node, node != nil
}

// Bind stores value at the dotted path tok, creating intermediate levels.
// A scalar in the way of an intermediate level is replaced.
func Bind(data map[string]any, tok string, value any) {
	levels := strings.Split(tok, ".")
	node := data
	for _, level := range levels[:len(levels)-1] {
		next, ok := node[level].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[level] = next
		}
		node = next
	}
	node[levels[len(levels)-1]] = value
}

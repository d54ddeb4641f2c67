package lactoserv

import (
	"errors"
	"sort"
)

// ErrDuplicateKey is returned by TreeMap.Add when an entry already exists
// at the given key (same path and same wildcard flag).
var ErrDuplicateKey = errors.New("lactoserv: duplicate path key")

// treeNode is one node of a TreeMap's component trie. A node may hold both
// an exact (non-wildcard) value and a wildcard value, since a wildcard and
// a non-wildcard entry at the same path are distinct.
type treeNode[V any] struct {
	children map[string]*treeNode[V]
	exact    *V
	wildcard *V
}

func newTreeNode[V any]() *treeNode[V] {
	return &treeNode[V]{children: map[string]*treeNode[V]{}}
}

// TreeMap maps PathKey to a value of type V, supporting exact add, exact
// lookup, subtree iteration under a wildcard key and find-with-fallback
// The zero value is not usable; use NewTreeMap.
type TreeMap[V any] struct {
	root *treeNode[V]
}

// NewTreeMap returns an empty TreeMap.
func NewTreeMap[V any]() *TreeMap[V] {
	return &TreeMap[V]{root: newTreeNode[V]()}
}

// Add registers value at key. It fails with ErrDuplicateKey if an entry
// with the same path and wildcard flag already exists.
func (t *TreeMap[V]) Add(key PathKey, value V) error {
	n := t.root
	for _, c := range key.path {
		child, ok := n.children[c]
		if !ok {
			child = newTreeNode[V]()
			n.children[c] = child
		}
		n = child
	}

	if key.wildcard {
		if n.wildcard != nil {
			return ErrDuplicateKey
		}
		n.wildcard = &value
	} else {
		if n.exact != nil {
			return ErrDuplicateKey
		}
		n.exact = &value
	}

	return nil
}

// Lookup returns the value registered at exactly key (matching both path
// and wildcard flag), or false if there is none.
func (t *TreeMap[V]) Lookup(key PathKey) (V, bool) {
	n := t.root
	for _, c := range key.path {
		child, ok := n.children[c]
		if !ok {
			var zero V
			return zero, false
		}
		n = child
	}

	var p *V
	if key.wildcard {
		p = n.wildcard
	} else {
		p = n.exact
	}

	if p == nil {
		var zero V
		return zero, false
	}

	return *p, true
}

// Match is one candidate yielded by FindWithFallback, most-specific first.
type Match[V any] struct {
	// Value is the matched entry's value.
	Value V

	// MatchedLen is the number of leading components of the search key
	// consumed by the matched entry's key.
	MatchedLen int

	// Wildcard reports whether the matched entry is a wildcard entry.
	Wildcard bool

	// Remainder is the trailing components of the search key beyond
	// MatchedLen.
	Remainder []string
}

// FindWithFallback returns the entries whose key matches key, ordered from
// most specific (the longest exact match, if any) to least specific
// (the shortest matching wildcard). For a wildcard entry registered at
// path P, it matches any search key whose path has P as a prefix.
func (t *TreeMap[V]) FindWithFallback(key PathKey) []Match[V] {
	var wildcards []Match[V]

	n := t.root
	if n.wildcard != nil {
		wildcards = append(wildcards, Match[V]{
			Value:      *n.wildcard,
			MatchedLen: 0,
			Wildcard:   true,
			Remainder:  append([]string(nil), key.path...),
		})
	}

	depth := 0
	for _, c := range key.path {
		child, ok := n.children[c]
		if !ok {
			break
		}
		n = child
		depth++

		if n.wildcard != nil {
			wildcards = append(wildcards, Match[V]{
				Value:      *n.wildcard,
				MatchedLen: depth,
				Wildcard:   true,
				Remainder:  append([]string(nil), key.path[depth:]...),
			})
		}
	}

	var results []Match[V]
	if depth == len(key.path) && n.exact != nil {
		results = append(results, Match[V]{
			Value:      *n.exact,
			MatchedLen: depth,
			Wildcard:   false,
			Remainder:  []string{},
		})
	}

	sort.SliceStable(wildcards, func(i, j int) bool {
		return wildcards[i].MatchedLen > wildcards[j].MatchedLen
	})

	results = append(results, wildcards...)

	return results
}

// SubtreeEntry is one entry yielded by Subtree.
type SubtreeEntry[V any] struct {
	Key   PathKey
	Value V
}

// Subtree returns every entry whose key's path has prefix.Path() as a
// component-wise prefix, including an entry registered exactly at prefix
// itself.
func (t *TreeMap[V]) Subtree(prefix PathKey) []SubtreeEntry[V] {
	n := t.root
	for _, c := range prefix.path {
		child, ok := n.children[c]
		if !ok {
			return nil
		}
		n = child
	}

	var out []SubtreeEntry[V]
	var walk func(node *treeNode[V], path []string)
	walk = func(node *treeNode[V], path []string) {
		if node.exact != nil {
			out = append(out, SubtreeEntry[V]{Key: NewPathKey(path, false), Value: *node.exact})
		}
		if node.wildcard != nil {
			out = append(out, SubtreeEntry[V]{Key: NewPathKey(path, true), Value: *node.wildcard})
		}

		children := make([]string, 0, len(node.children))
		for c := range node.children {
			children = append(children, c)
		}
		sort.Strings(children)

		for _, c := range children {
			walk(node.children[c], append(append([]string(nil), path...), c))
		}
	}

	walk(n, append([]string(nil), prefix.path...))

	return out
}

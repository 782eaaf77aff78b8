package trie

import (
	"sort"
)

// Trie maps string keys to string values and answers prefix queries.
//
// Keys are decomposed into labels by a SplitFunc; a prefix query only matches
// on label boundaries, so with SplitRune every string prefix matches and with
// SplitPath only whole segments do.
//
// Trie is not safe for concurrent use.
type Trie struct {
	split SplitFunc
	root  *node
	count int
}

type node struct {
	children map[string]*node
	value    string
	terminal bool
}

// NewTrie creates an empty trie splitting keys with split
func NewTrie(split SplitFunc) *Trie {
	return &Trie{
		split: split,
		root:  &node{},
	}
}

// IsEmpty returns true if no key was inserted
func (t *Trie) IsEmpty() bool {
	return t.count == 0
}

// Count returns the number of distinct keys
func (t *Trie) Count() int {
	return t.count
}

// Insert stores value under key, replacing a previous value. The empty key is ignored.
func (t *Trie) Insert(key, value string) {
	if len(key) == 0 {
		return
	}

	n := t.root

	for rest := key; len(rest) > 0; {
		var label string

		label, rest = t.split(rest)

		if n.children == nil {
			n.children = make(map[string]*node, 1)
		}

		child, ok := n.children[label]
		if !ok {
			child = &node{}
			n.children[label] = child
		}

		n = child
	}

	if !n.terminal {
		t.count++
	}

	n.terminal = true
	n.value = value
}

// Contains returns true if exactly this key was inserted
func (t *Trie) Contains(key string) bool {
	if len(key) == 0 {
		return false
	}

	n := t.find(key)

	return n != nil && n.terminal
}

// WithPrefix returns the values of all keys starting with prefix, ordered by key.
// The empty prefix matches every key.
func (t *Trie) WithPrefix(prefix string) []string {
	n := t.find(prefix)
	if n == nil {
		return nil
	}

	var result []string

	n.walk(func(value string) {
		result = append(result, value)
	})

	return result
}

// Walk calls fn for every stored value, ordered by key
func (t *Trie) Walk(fn func(value string)) {
	t.root.walk(fn)
}

func (t *Trie) find(prefix string) *node {
	n := t.root

	for rest := prefix; len(rest) > 0; {
		var label string

		label, rest = t.split(rest)

		child, ok := n.children[label]
		if !ok {
			return nil
		}

		n = child
	}

	return n
}

func (n *node) walk(fn func(value string)) {
	if n.terminal {
		fn(n.value)
	}

	if len(n.children) == 0 {
		return
	}

	labels := make([]string, 0, len(n.children))
	for label := range n.children {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	for _, label := range labels {
		n.children[label].walk(fn)
	}
}

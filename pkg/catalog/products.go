package catalog

import (
	"slices"
	"strings"

	"github.com/matst80/store-locator/pkg/stores"
)

type productNode struct {
	children map[rune]*productNode
	name     string // display name, set on the last rune of a product
}

// productTrie maps lower cased product names to the first spelling seen.
// Words inside a name are indexed too so "crisp" finds "Coffee Crisp".
type productTrie struct {
	root *productNode
}

func newProductTrie(all []stores.Store) *productTrie {
	t := &productTrie{root: &productNode{children: make(map[rune]*productNode)}}
	for _, s := range all {
		for _, p := range s.Products {
			t.insert(p)
		}
	}
	return t
}

func (t *productTrie) insert(product string) {
	name := strings.TrimSpace(product)
	if name == "" {
		return
	}
	words := strings.Fields(strings.ToLower(name))
	for i := range words {
		t.insertKey(strings.Join(words[i:], " "), name)
	}
}

func (t *productTrie) insertKey(key, name string) {
	node := t.root
	for _, r := range key {
		next, ok := node.children[r]
		if !ok {
			next = &productNode{children: make(map[rune]*productNode)}
			node.children[r] = next
		}
		node = next
	}
	if node.name == "" {
		node.name = name
	}
}

// match returns the distinct display names under prefix, sorted.
func (t *productTrie) match(prefix string) []string {
	node := t.root
	for _, r := range strings.ToLower(strings.TrimSpace(prefix)) {
		next, ok := node.children[r]
		if !ok {
			return []string{}
		}
		node = next
	}
	seen := map[string]struct{}{}
	collect(node, seen)
	ret := make([]string, 0, len(seen))
	for name := range seen {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

func collect(node *productNode, seen map[string]struct{}) {
	if node.name != "" {
		seen[node.name] = struct{}{}
	}
	for _, child := range node.children {
		collect(child, seen)
	}
}

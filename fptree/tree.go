package fptree

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

type node struct {
	Item       string
	Counter    float64
	ParentNode int
	NextMap    map[string]int
}

// Tree is a weighted FP-tree. Nodes live in an arena and refer to each other by
// index; index 0 is the root, whose item is empty and whose count stays 0.
type Tree struct {
	nodes []node

	// HeadMap lists, per item, the indices of every node carrying it in creation order.
	HeadMap map[string][]int
	// CountMap is the frequent item table the tree was built with.
	CountMap FrequentItems

	config Config
}

func InitTree(freq FrequentItems, cfg Config) *Tree {
	t := &Tree{
		nodes:    make([]node, 0, 1+len(freq)),
		HeadMap:  make(map[string][]int, len(freq)),
		CountMap: freq,
		config:   cfg,
	}
	t.nodes = append(t.nodes, node{ParentNode: noParent, NextMap: make(map[string]int)})
	return t
}

// BuildTree inserts every transaction, restricted to the items in freq and ordered
// by descending support, into a new tree. cfg is kept for mining the tree later.
func BuildTree(trns []Transaction, freq FrequentItems, cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for idx, t := range trns {
		if err := validateTransaction(idx, t); err != nil {
			return nil, err
		}
	}
	t := buildTree(trns, freq, cfg)
	log.Debugf("tree built nodes:%d items:%d transactions:%d", t.Len(), len(freq), len(trns))
	return t, nil
}

func buildTree(trns []Transaction, freq FrequentItems, cfg Config) *Tree {
	t := InitTree(freq, cfg)
	for _, tr := range trns {
		items := t.OrderItems(tr.Labels)
		if len(items) == 0 {
			continue
		}
		t.InsertItems(items, tr.ResolvedWeight())
	}
	return t
}

// OrderItems drops duplicate and infrequent labels and sorts the rest by descending
// support. Equal supports are ordered by ascending label so tree shape is reproducible.
func (t *Tree) OrderItems(labels []string) []string {
	items := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if _, ok := t.CountMap[l]; !ok || seen[l] {
			continue
		}
		seen[l] = true
		items = append(items, l)
	}
	sort.Slice(items, func(i, j int) bool {
		ci, cj := t.CountMap[items[i]], t.CountMap[items[j]]
		if ci != cj {
			return ci > cj
		}
		return items[i] < items[j]
	})
	return items
}

// InsertItems adds one ordered transaction below the root.
func (t *Tree) InsertItems(items []string, weight float64) {
	curr := rootIndex
	for _, item := range items {
		child, ok := t.nodes[curr].NextMap[item]
		if !ok {
			child = len(t.nodes)
			t.nodes = append(t.nodes, node{
				Item:       item,
				ParentNode: curr,
				NextMap:    make(map[string]int),
			})
			t.nodes[curr].NextMap[item] = child
			t.HeadMap[item] = append(t.HeadMap[item], child)
		}
		t.nodes[child].Counter += weight
		curr = child
	}
}

// PrefixPath returns the items from the root down to, but excluding, node idx.
func (t *Tree) PrefixPath(idx int) []string {
	path := make([]string, 0)
	for p := t.nodes[idx].ParentNode; p != noParent && p != rootIndex; p = t.nodes[p].ParentNode {
		path = append(path, t.nodes[p].Item)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Len counts the nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Root() int { return rootIndex }

func (t *Tree) Config() Config { return t.config }

func (t *Tree) Item(idx int) string { return t.nodes[idx].Item }

func (t *Tree) Count(idx int) float64 { return t.nodes[idx].Counter }

// Parent returns -1 for the root.
func (t *Tree) Parent(idx int) int { return t.nodes[idx].ParentNode }

// Child returns the child of idx carrying item, if any.
func (t *Tree) Child(idx int, item string) (int, bool) {
	c, ok := t.nodes[idx].NextMap[item]
	return c, ok
}

func (t *Tree) HeaderNodes(item string) []int { return t.HeadMap[item] }

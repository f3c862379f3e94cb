package fptree

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Mine filters, builds and mines trns in one call.
func Mine(trns []Transaction, minSupport, minOccurrences float64) (PatternMap, error) {
	return MineContext(context.Background(), trns, Config{MinSupport: minSupport, MinOccurrences: minOccurrences})
}

func MineWithConfig(trns []Transaction, cfg Config) (PatternMap, error) {
	return MineContext(context.Background(), trns, cfg)
}

// MineContext is Mine with a cancellation check before each top level item.
func MineContext(ctx context.Context, trns []Transaction, cfg Config) (PatternMap, error) {
	tr, err := NewTree(trns, cfg)
	if err != nil {
		return nil, err
	}
	return tr.MinePatternsContext(ctx)
}

// MineIterative is Mine driven by an explicit work stack instead of recursion.
func MineIterative(ctx context.Context, trns []Transaction, cfg Config) (PatternMap, error) {
	tr, err := NewTree(trns, cfg)
	if err != nil {
		return nil, err
	}
	return tr.MinePatternsIterative(ctx)
}

// NewTree runs FilterFrequentItems and BuildTree with cfg.
func NewTree(trns []Transaction, cfg Config) (*Tree, error) {
	freq, err := FilterFrequentItems(trns, cfg.MinSupport, cfg.MinOccurrences)
	if err != nil {
		return nil, err
	}
	return BuildTree(trns, freq, cfg)
}

// MinePatterns returns every frequent pattern of tr with its weighted support.
func MinePatterns(tr *Tree) (PatternMap, error) {
	return tr.MinePatternsContext(context.Background())
}

func (t *Tree) MinePatternsContext(ctx context.Context) (PatternMap, error) {
	return t.mine(ctx, true)
}

func (t *Tree) mine(ctx context.Context, topLevel bool) (PatternMap, error) {
	patterns := NewPatternMap()
	for _, item := range t.MiningOrder() {
		if topLevel {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "mining cancelled")
			}
		}
		cond, err := t.conditionalTree(item)
		if err != nil {
			return nil, err
		}
		sub, err := cond.mine(ctx, false)
		if err != nil {
			return nil, err
		}
		for _, p := range sub {
			items := make([]string, 0, len(p.Items)+1)
			items = append(items, p.Items...)
			items = append(items, item)
			patterns.Add(items, p.Count)
		}
		patterns.Add([]string{item}, t.CountMap[item])
	}
	return patterns, nil
}

type mineTask struct {
	tree   *Tree
	item   string
	suffix []string
}

// MinePatternsIterative produces the same PatternMap as MinePatterns while keeping
// the pending conditional work on the heap.
func (t *Tree) MinePatternsIterative(ctx context.Context) (PatternMap, error) {
	patterns := NewPatternMap()
	stack := make([]mineTask, 0)
	stack = pushTasks(stack, t, nil)

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(task.suffix) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "mining cancelled")
			}
		}

		items := make([]string, 0, len(task.suffix)+1)
		items = append(items, task.item)
		items = append(items, task.suffix...)
		patterns.Add(items, task.tree.CountMap[task.item])

		cond, err := task.tree.conditionalTree(task.item)
		if err != nil {
			return nil, err
		}
		stack = pushTasks(stack, cond, items)
	}
	return patterns, nil
}

// pushTasks pushes in reverse so that items pop in mining order.
func pushTasks(stack []mineTask, tr *Tree, suffix []string) []mineTask {
	order := tr.MiningOrder()
	for i := len(order) - 1; i >= 0; i-- {
		stack = append(stack, mineTask{tree: tr, item: order[i], suffix: suffix})
	}
	return stack
}

// MiningOrder lists the frequent items by ascending support, the exact reverse of
// the insertion order used by OrderItems.
func (t *Tree) MiningOrder() []string {
	items := make([]string, 0, len(t.CountMap))
	for k := range t.CountMap {
		items = append(items, k)
	}
	sort.Slice(items, func(i, j int) bool {
		ci, cj := t.CountMap[items[i]], t.CountMap[items[j]]
		if ci != cj {
			return ci < cj
		}
		return items[i] > items[j]
	})
	return items
}

// ConditionalBase collects the prefix path of every node carrying item, weighted
// by that node's count. Nodes hanging directly off the root contribute nothing.
func (t *Tree) ConditionalBase(item string) []Transaction {
	base := make([]Transaction, 0, len(t.HeadMap[item]))
	for _, idx := range t.HeadMap[item] {
		path := t.PrefixPath(idx)
		if len(path) == 0 {
			continue
		}
		w := t.nodes[idx].Counter
		base = append(base, Transaction{Labels: path, Weight: &w})
	}
	return base
}

func (t *Tree) conditionalTree(item string) (*Tree, error) {
	base := t.ConditionalBase(item)
	freq := filterFrequentItems(base, t.config)

	// every conditional item set must be a strict subset of ours, without item itself
	for k := range freq {
		if _, ok := t.CountMap[k]; !ok || k == item {
			log.WithFields(log.Fields{"item": item, "conditional_item": k}).
				Error("conditional tree does not shrink")
			return nil, errors.Wrapf(ErrInvariantViolation, "conditional tree of %q contains %q", item, k)
		}
	}
	log.Debugf("conditional base for %s paths:%d frequent:%d", item, len(base), len(freq))
	return buildTree(base, freq, t.config), nil
}

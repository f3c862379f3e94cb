package fptree

import (
	"sort"
	"strings"
)

// Pattern is a sequence of items in discovery order with its weighted support.
type Pattern struct {
	Items []string `json:"items"`
	Count float64  `json:"count"`
}

func (p Pattern) Key() string { return PatternKey(p.Items...) }

// PatternMap holds one entry per distinct item sequence.
type PatternMap map[string]*Pattern

func NewPatternMap() PatternMap {
	return make(PatternMap)
}

func PatternKey(items ...string) string {
	return strings.Join(items, keySeparator)
}

// Add merges count into the entry for items, creating it if needed.
func (pm PatternMap) Add(items []string, count float64) {
	key := PatternKey(items...)
	if p, ok := pm[key]; ok {
		p.Count += count
		return
	}
	cp := make([]string, len(items))
	copy(cp, items)
	pm[key] = &Pattern{Items: cp, Count: count}
}

func (pm PatternMap) Get(items ...string) (float64, bool) {
	p, ok := pm[PatternKey(items...)]
	if !ok {
		return 0, false
	}
	return p.Count, true
}

func (pm PatternMap) Len() int { return len(pm) }

// Counts flattens the map to key -> count.
func (pm PatternMap) Counts() map[string]float64 {
	res := make(map[string]float64, len(pm))
	for k, p := range pm {
		res[k] = p.Count
	}
	return res
}

// Patterns returns all entries by descending count, then shorter first, then by key.
func (pm PatternMap) Patterns() []Pattern {
	res := make([]Pattern, 0, len(pm))
	for _, p := range pm {
		res = append(res, *p)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		if len(res[i].Items) != len(res[j].Items) {
			return len(res[i].Items) < len(res[j].Items)
		}
		return res[i].Key() < res[j].Key()
	})
	return res
}

package fptree

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFrequentItems(t *testing.T) {
	trns := []Transaction{
		NewTransaction(3, "a", "b", "a"),
		NewTransaction(2, "a"),
		NewTransaction(1, "b", "c"),
	}
	freq, err := FilterFrequentItems(trns, 2, 1)
	require.Nil(t, err)
	assert.Equal(t, FrequentItems{"a": 5, "b": 4}, freq)

	// both thresholds are checked against the same weighted support
	freq, err = FilterFrequentItems(trns, 1, 4.5)
	require.Nil(t, err)
	assert.Equal(t, FrequentItems{"a": 5}, freq)
}

func TestFilterFrequentItemsErrors(t *testing.T) {
	tests := []struct {
		name string
		trns []Transaction
		want error
	}{
		{"negative weight", []Transaction{NewTransaction(-1, "a")}, ErrInvalidWeight},
		{"empty label", []Transaction{NewTransaction(1, "a", "")}, ErrInvalidLabel},
		{"separator label", []Transaction{NewTransaction(1, "a\x1fb")}, ErrInvalidLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FilterFrequentItems(tt.trns, 0, 0)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestExcludeLabels(t *testing.T) {
	trns := []Transaction{NewTransaction(2, "a", "spoiler", "b"), {Labels: []string{"spoiler"}}}
	res := ExcludeLabels(trns, []string{"spoiler"})
	require.Len(t, res, 2)
	assert.Equal(t, []string{"a", "b"}, res[0].Labels)
	assert.Equal(t, 2.0, res[0].ResolvedWeight())
	assert.Empty(t, res[1].Labels)
	// input untouched
	assert.Equal(t, []string{"a", "spoiler", "b"}, trns[0].Labels)
}

func TestInitTree(t *testing.T) {
	tr := InitTree(FrequentItems{}, Config{})
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, "", tr.Item(tr.Root()))
	assert.Equal(t, 0.0, tr.Count(tr.Root()))
	assert.Equal(t, -1, tr.Parent(tr.Root()))
}

func TestInsertItems(t *testing.T) {
	freq := FrequentItems{"A": 1, "B": 1, "C": 1, "D": 1}
	tr := InitTree(freq, Config{})
	tr.InsertItems([]string{"A", "B", "C", "D"}, 1)
	assert.Equal(t, 4, len(tr.HeadMap), "number of items inserted")
	tr.InsertItems([]string{"B", "A", "C", "D"}, 1)
	assert.Equal(t, 4, len(tr.HeadMap), "number of items inserted into head")
	for item, nodes := range tr.HeadMap {
		assert.Len(t, nodes, 2, item)
		for _, idx := range nodes {
			assert.Equal(t, item, tr.Item(idx))
			assert.NotEqual(t, -1, tr.Parent(idx), "all parent nodes are set")
		}
	}
	assert.Equal(t, 9, tr.Len())
}

func TestSharedPrefix(t *testing.T) {
	tr, err := NewTree([]Transaction{
		NewTransaction(2, "x", "y", "z"),
		NewTransaction(1, "x", "y"),
		NewTransaction(0.5, "x", "w"),
	}, Config{})
	require.Nil(t, err)

	x, ok := tr.Child(tr.Root(), "x")
	require.True(t, ok)
	assert.Equal(t, 3.5, tr.Count(x))
	y, ok := tr.Child(x, "y")
	require.True(t, ok)
	assert.Equal(t, 3.0, tr.Count(y))
	assert.Len(t, tr.HeaderNodes("y"), 1)
	// root + x, y, z, w
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, 0.0, tr.Count(tr.Root()))
}

func TestPrefixPath(t *testing.T) {
	tr := InitTree(FrequentItems{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1}, Config{})
	tr.InsertItems([]string{"A", "B", "C", "D", "E"}, 1)
	e := tr.HeaderNodes("E")[0]
	assert.Equal(t, []string{"A", "B", "C", "D"}, tr.PrefixPath(e))
	a := tr.HeaderNodes("A")[0]
	assert.Empty(t, tr.PrefixPath(a))
}

func TestHeaderTableOrder(t *testing.T) {
	tr := InitTree(FrequentItems{"A": 4, "B": 3, "C": 2, "D": 1}, Config{})
	tr.InsertItems([]string{"A", "B", "C"}, 1)
	tr.InsertItems([]string{"B", "C"}, 1)
	tr.InsertItems([]string{"A", "C"}, 1)
	nodes := tr.HeaderNodes("C")
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"A", "B"}, tr.PrefixPath(nodes[0]))
	assert.Equal(t, []string{"B"}, tr.PrefixPath(nodes[1]))
	assert.Equal(t, []string{"A"}, tr.PrefixPath(nodes[2]))
	assert.Less(t, nodes[0], nodes[1])
	assert.Less(t, nodes[1], nodes[2])
}

func TestBuildTreeIgnoresInfrequent(t *testing.T) {
	trns := wordsBatch("ABCD", "AD", "AC", "AK", "DKL")
	tr, err := NewTree(trns, Config{MinSupport: 2})
	require.Nil(t, err)
	assert.NotContains(t, tr.HeadMap, "B")
	assert.NotContains(t, tr.HeadMap, "L")
	assert.Equal(t, FrequentItems{"A": 4, "C": 2, "D": 3, "K": 2}, tr.CountMap)
}

func TestBuildTreeValidates(t *testing.T) {
	_, err := BuildTree([]Transaction{NewTransaction(1, "a")}, FrequentItems{"a": 1}, Config{MinSupport: -2})
	assert.True(t, errors.Is(err, ErrInvalidThreshold))
	_, err = BuildTree([]Transaction{{Labels: []string{"a"}, Weight: w(-3)}}, FrequentItems{"a": 1}, Config{})
	assert.True(t, errors.Is(err, ErrInvalidWeight))
}

func TestConditionalTreeInvariant(t *testing.T) {
	// a hand-built tree whose item table omits an item present in the nodes
	tr := InitTree(FrequentItems{"b": 1}, Config{})
	tr.InsertItems([]string{"a", "b"}, 1)
	_, err := MinePatterns(tr)
	assert.True(t, errors.Is(err, ErrInvariantViolation))
}

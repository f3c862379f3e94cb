package pattern_service

import (
	"context"
	"io/ioutil"
	"strings"
	"testing"

	fp "github.com/wyciszone/fpgrowth-with-weight/fptree"
	"github.com/wyciszone/fpgrowth-with-weight/services/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch() []fp.Transaction {
	return []fp.Transaction{
		fp.NewTransaction(3, "a", "b", "spoiler"),
		fp.NewTransaction(2, "a"),
		fp.NewTransaction(1, "b", "spoiler"),
	}
}

func TestRun(t *testing.T) {
	ps, err := New(4, nil, "")
	require.Nil(t, err)

	cfg := fp.Config{MinSupport: 2, MinOccurrences: 1, ExcludedLabels: []string{"spoiler"}}
	run, err := ps.Run(context.Background(), Request{Transactions: batch(), Config: cfg})
	require.Nil(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Transactions)
	assert.Equal(t, 2, run.FrequentItems)
	assert.Equal(t, 3, run.PatternCount)
	_, ok := run.Patterns.Get("spoiler")
	assert.False(t, ok, "excluded labels never reach the tree")
	require.Len(t, run.Rows, 3)
	assert.Equal(t, "a", run.Rows[0].Tags)

	cached, ok := ps.GetRun(run.ID)
	require.True(t, ok)
	assert.Equal(t, run, cached)
	_, ok = ps.GetRun("missing")
	assert.False(t, ok)
}

func TestRunIterativeAndLimit(t *testing.T) {
	ps, err := New(4, nil, "")
	require.Nil(t, err)
	cfg := fp.Config{MinSupport: 1}

	rec, err := ps.Run(context.Background(), Request{Transactions: batch(), Config: cfg, Limit: 2})
	require.Nil(t, err)
	it, err := ps.Run(context.Background(), Request{Transactions: batch(), Config: cfg, Limit: 2, Iterative: true})
	require.Nil(t, err)

	assert.Equal(t, rec.Patterns.Counts(), it.Patterns.Counts())
	assert.Len(t, rec.Rows, 2)
	assert.Equal(t, rec.Rows, it.Rows)
	assert.NotEqual(t, rec.ID, it.ID)
}

func TestRunInvalid(t *testing.T) {
	ps, err := New(4, nil, "")
	require.Nil(t, err)
	_, err = ps.Run(context.Background(), Request{Transactions: batch(), Config: fp.Config{MinSupport: -1}})
	assert.NotNil(t, err)
}

func TestRunStoresReportAndTree(t *testing.T) {
	dd := disk.New(t.TempDir())
	ps, err := New(4, dd, "csv")
	require.Nil(t, err)

	run, err := ps.Run(context.Background(), Request{
		Transactions: batch(),
		Config:       fp.Config{MinSupport: 2, MinOccurrences: 1, ExcludedLabels: []string{"spoiler"}},
		DumpTree:     true,
	})
	require.Nil(t, err)

	path, name := dd.GetReportFilePathAndName(run.ID, "csv")
	rc, err := dd.Get(path, name)
	require.Nil(t, err)
	raw, err := ioutil.ReadAll(rc)
	rc.Close()
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Tags,Weighted_Popularity\na,5\n"))

	path, name = dd.GetTreeSnapshotFilePathAndName(run.ID)
	rc, err = dd.Get(path, name)
	require.Nil(t, err)
	defer rc.Close()
	tree, err := fp.ReadSnapshot(rc)
	require.Nil(t, err)
	assert.Equal(t, run.TreeNodes, tree.Len())
}

func TestRunMany(t *testing.T) {
	ps, err := New(8, nil, "")
	require.Nil(t, err)
	configs := []fp.Config{{MinSupport: 1}, {MinSupport: 2, MinOccurrences: 1}, {MinSupport: 6}}

	runs, err := ps.RunMany(context.Background(), batch(), configs, 0)
	require.Nil(t, err)
	require.Len(t, runs, 3)
	for i, run := range runs {
		assert.Equal(t, configs[i], run.Config)
		want, err := fp.MineWithConfig(batch(), configs[i])
		require.Nil(t, err)
		assert.Equal(t, want.Counts(), run.Patterns.Counts())
	}
	assert.Equal(t, 0, runs[2].PatternCount)

	_, err = ps.RunMany(context.Background(), batch(), []fp.Config{{MinSupport: 1}, {MinOccurrences: -1}}, 0)
	assert.NotNil(t, err)
}

func TestRunCancelled(t *testing.T) {
	ps, err := New(4, nil, "")
	require.Nil(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ps.Run(ctx, Request{Transactions: batch(), Config: fp.Config{MinSupport: 1}})
	assert.NotNil(t, err)
}

func TestNewRejectsEmptyCache(t *testing.T) {
	_, err := New(0, nil, "")
	assert.NotNil(t, err)

	ps, err := New(1, nil, "")
	require.Nil(t, err)
	assert.Equal(t, "csv", ps.reportFormat)
}

// Package pattern_service mines transaction batches and keeps finished runs in memory.
package pattern_service

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"
	fp "github.com/wyciszone/fpgrowth-with-weight/fptree"
	"github.com/wyciszone/fpgrowth-with-weight/report"

	"github.com/google/uuid"
	cache "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Request struct {
	Transactions []fp.Transaction
	Config       fp.Config
	// Limit caps the rows kept in the run; <= 0 keeps all.
	Limit     int
	Iterative bool
	DumpTree  bool
}

// Run is one finished mining run.
type Run struct {
	ID            string        `json:"run_id"`
	Config        fp.Config     `json:"config"`
	Transactions  int           `json:"transactions"`
	FrequentItems int           `json:"frequent_items"`
	TreeNodes     int           `json:"tree_nodes"`
	PatternCount  int           `json:"pattern_count"`
	Duration      time.Duration `json:"duration_ns"`
	Rows          []report.Row  `json:"patterns"`

	Patterns fp.PatternMap `json:"-"`
}

// PatternService mines batches and keeps recent runs in an LRU cache. When a file
// manager is set, every run's report (and optionally its tree) is stored through it.
type PatternService struct {
	runCache     *cache.Cache
	fileManager  filestore.FileManager
	reportFormat string
}

func New(runCacheSize int, fm filestore.FileManager, reportFormat string) (*PatternService, error) {
	runCache, err := cache.New(runCacheSize)
	if err != nil {
		return nil, err
	}
	if reportFormat == "" {
		reportFormat = report.FormatCSV
	}
	return &PatternService{runCache: runCache, fileManager: fm, reportFormat: reportFormat}, nil
}

func (ps *PatternService) Run(ctx context.Context, req Request) (*Run, error) {
	start := time.Now()
	run := &Run{ID: uuid.New().String(), Config: req.Config, Transactions: len(req.Transactions)}
	logCtx := log.WithFields(log.Fields{"run_id": run.ID, "transactions": run.Transactions})

	trns := fp.ExcludeLabels(req.Transactions, req.Config.ExcludedLabels)
	tree, err := fp.NewTree(trns, req.Config)
	if err != nil {
		return nil, err
	}
	run.FrequentItems = len(tree.CountMap)
	run.TreeNodes = tree.Len()

	if req.Iterative {
		run.Patterns, err = tree.MinePatternsIterative(ctx)
	} else {
		run.Patterns, err = tree.MinePatternsContext(ctx)
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to mine patterns")
		return nil, err
	}
	run.PatternCount = run.Patterns.Len()
	run.Rows = report.Rows(report.SelectTop(run.Patterns, req.Limit))

	if ps.fileManager != nil {
		if err := ps.store(run, tree, req.DumpTree); err != nil {
			return nil, err
		}
	}
	run.Duration = time.Since(start)
	ps.runCache.Add(run.ID, run)

	logCtx.WithFields(log.Fields{
		"frequent_items": run.FrequentItems,
		"tree_nodes":     run.TreeNodes,
		"patterns":       run.PatternCount,
		"duration":       run.Duration.String(),
	}).Info("Mining run finished")
	return run, nil
}

func (ps *PatternService) store(run *Run, tree *fp.Tree, dumpTree bool) error {
	path, name := ps.fileManager.GetReportFilePathAndName(run.ID, ps.reportFormat)
	if err := report.Export(ps.fileManager, path, name, ps.reportFormat, run.Rows); err != nil {
		return err
	}
	if !dumpTree {
		return nil
	}
	var buf bytes.Buffer
	if err := tree.WriteSnapshot(&buf); err != nil {
		return errors.Wrap(err, "serialize tree")
	}
	path, name = ps.fileManager.GetTreeSnapshotFilePathAndName(run.ID)
	return errors.Wrap(ps.fileManager.Create(path, name, bytes.NewReader(buf.Bytes())), "store tree")
}

// RunMany mines the same batch once per config, concurrently. Each run builds
// its own tree; results come back in config order.
func (ps *PatternService) RunMany(ctx context.Context, trns []fp.Transaction, configs []fp.Config, limit int) ([]*Run, error) {
	runs := make([]*Run, len(configs))
	errs := make([]error, len(configs))

	var wg sync.WaitGroup
	for i := range configs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runs[i], errs[i] = ps.Run(ctx, Request{Transactions: trns, Config: configs[i], Limit: limit})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "config %d", i)
		}
	}
	return runs, nil
}

func (ps *PatternService) GetRun(id string) (*Run, bool) {
	v, ok := ps.runCache.Get(id)
	if !ok {
		return nil, false
	}
	run, ok := v.(*Run)
	return run, ok
}

package fptree

import (
	"bufio"
	"io"
	"math"
	"os"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	maxSnapshotLineBytes = 20 * 1024 * 1024

	// node counts are summed in a different order than the item table was
	supportTolerance = 1e-9
)

// snapshotHeader is the first line of a snapshot.
type snapshotHeader struct {
	MinSupport     float64       `json:"min_support"`
	MinOccurrences float64       `json:"min_occurrences"`
	ExcludedLabels []string      `json:"excluded_labels,omitempty"`
	Items          FrequentItems `json:"items"`
}

// TreeNode is the serialized form of one node. Parent is the line index of the
// parent node among node lines, -1 for the root.
type TreeNode struct {
	Item   string  `json:"i"`
	Count  float64 `json:"c"`
	Parent int     `json:"p"`
}

// Serialize renders the tree as JSON lines: a header with the thresholds and the
// frequent item table, then one line per node in arena order. Parents always
// precede their children and header lists keep their order on reload.
func (t *Tree) Serialize() ([]string, error) {
	lines := make([]string, 0, len(t.nodes)+1)
	h := snapshotHeader{
		MinSupport:     t.config.MinSupport,
		MinOccurrences: t.config.MinOccurrences,
		ExcludedLabels: t.config.ExcludedLabels,
		Items:          t.CountMap,
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot header")
	}
	lines = append(lines, string(b))

	for _, n := range t.nodes {
		b, err := json.Marshal(TreeNode{Item: n.Item, Count: n.Counter, Parent: n.ParentNode})
		if err != nil {
			log.WithFields(log.Fields{"item": n.Item, "err": err}).Error("Unable to marshal node.")
			return nil, err
		}
		lines = append(lines, string(b))
	}
	return lines, nil
}

func (t *Tree) WriteSnapshot(w io.Writer) error {
	lines, err := t.Serialize()
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DeserializeTree rebuilds a tree from the output of Serialize.
func DeserializeTree(lines []string) (*Tree, error) {
	if len(lines) < 2 {
		return nil, errors.Wrapf(ErrCorruptSnapshot, "expected header and root, got %d lines", len(lines))
	}
	var h snapshotHeader
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		return nil, errors.Wrap(ErrCorruptSnapshot, err.Error())
	}
	cfg := Config{MinSupport: h.MinSupport, MinOccurrences: h.MinOccurrences, ExcludedLabels: h.ExcludedLabels}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if h.Items == nil {
		h.Items = make(FrequentItems)
	}
	for item := range h.Items {
		if err := validateLabel(item); err != nil {
			return nil, errors.Wrap(ErrCorruptSnapshot, err.Error())
		}
	}
	t := InitTree(h.Items, cfg)

	for i, line := range lines[1:] {
		var tn TreeNode
		if err := json.Unmarshal([]byte(line), &tn); err != nil {
			return nil, errors.Wrapf(ErrCorruptSnapshot, "node %d: %v", i, err)
		}
		if i == rootIndex {
			if tn.Item != "" || tn.Parent != noParent || tn.Count != 0 {
				return nil, errors.Wrapf(ErrCorruptSnapshot, "bad root %+v", tn)
			}
			continue
		}
		if err := t.attachNode(i, tn); err != nil {
			return nil, err
		}
	}
	if err := t.checkItemTotals(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkItemTotals requires every item's support to equal the sum of its node counts.
func (t *Tree) checkItemTotals() error {
	for item, want := range t.CountMap {
		var got float64
		for _, idx := range t.HeadMap[item] {
			got += t.nodes[idx].Counter
		}
		if math.Abs(got-want) > supportTolerance*math.Max(1, math.Abs(want)) {
			return errors.Wrapf(ErrCorruptSnapshot, "item %q: support %v, nodes hold %v", item, want, got)
		}
	}
	return nil
}

func (t *Tree) attachNode(idx int, tn TreeNode) error {
	if tn.Parent < 0 || tn.Parent >= idx {
		return errors.Wrapf(ErrCorruptSnapshot, "node %d: parent %d out of order", idx, tn.Parent)
	}
	if _, ok := t.CountMap[tn.Item]; !ok {
		return errors.Wrapf(ErrCorruptSnapshot, "node %d: item %q not in item table", idx, tn.Item)
	}
	if math.IsNaN(tn.Count) || math.IsInf(tn.Count, 0) || tn.Count < 0 {
		return errors.Wrapf(ErrCorruptSnapshot, "node %d: count %v", idx, tn.Count)
	}
	if _, dup := t.nodes[tn.Parent].NextMap[tn.Item]; dup {
		return errors.Wrapf(ErrCorruptSnapshot, "node %d: duplicate child %q", idx, tn.Item)
	}
	t.nodes = append(t.nodes, node{
		Item:       tn.Item,
		Counter:    tn.Count,
		ParentNode: tn.Parent,
		NextMap:    make(map[string]int),
	})
	t.nodes[tn.Parent].NextMap[tn.Item] = idx
	t.HeadMap[tn.Item] = append(t.HeadMap[tn.Item], idx)
	return nil
}

func ReadSnapshot(r io.Reader) (*Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSnapshotLineBytes)
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}
	return DeserializeTree(lines)
}

func WriteTreeToFile(tr *Tree, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := tr.WriteSnapshot(file); err != nil {
		log.WithError(err).Error("Unable to write serialized tree to file")
		return err
	}
	return nil
}

func CreateTreeFromFile(fname string) (*Tree, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	tr, err := ReadSnapshot(file)
	if err != nil {
		return nil, errors.Wrapf(err, "tree snapshot %s", fname)
	}
	return tr, nil
}

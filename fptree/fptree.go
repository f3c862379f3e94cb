// Package fptree builds weighted frequent-pattern trees and mines them with FP-growth.
package fptree

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultWeight is used for transactions that carry no weight.
	DefaultWeight = 1.0

	// keySeparator joins pattern items into a PatternMap key. Labels may not contain it.
	keySeparator = "\x1f"

	rootIndex = 0
	noParent  = -1
)

var (
	ErrInvalidThreshold   = errors.New("invalid threshold")
	ErrInvalidWeight      = errors.New("invalid transaction weight")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrInvariantViolation = errors.New("fptree invariant violated")
	ErrCorruptSnapshot    = errors.New("corrupt tree snapshot")
)

// Transaction is one weighted set of labels. A nil Weight means DefaultWeight.
type Transaction struct {
	Labels []string
	Weight *float64
}

func NewTransaction(weight float64, labels ...string) Transaction {
	return Transaction{Labels: labels, Weight: &weight}
}

func (t Transaction) ResolvedWeight() float64 {
	if t.Weight == nil {
		return DefaultWeight
	}
	return *t.Weight
}

// FrequentItems maps a label to its weighted support. Only labels passing
// both thresholds are present.
type FrequentItems map[string]float64

// Config carries the absolute thresholds used at every level of mining.
//
// MinSupport and MinOccurrences are both compared against the same weighted
// support value. ExcludedLabels is carried along with the tree but never
// consulted by it; callers drop those labels with ExcludeLabels before mining.
type Config struct {
	MinSupport     float64  `json:"min_support" yaml:"min_support"`
	MinOccurrences float64  `json:"min_occurrences" yaml:"min_occurrences"`
	ExcludedLabels []string `json:"excluded_labels,omitempty" yaml:"excluded_labels"`
}

func (c Config) Validate() error {
	if err := validateThreshold("min_support", c.MinSupport); err != nil {
		return err
	}
	return validateThreshold("min_occurrences", c.MinOccurrences)
}

func validateThreshold(name string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return errors.Wrapf(ErrInvalidThreshold, "%s=%v", name, v)
	}
	return nil
}

func validateTransaction(idx int, t Transaction) error {
	w := t.ResolvedWeight()
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return errors.Wrapf(ErrInvalidWeight, "transaction %d: weight=%v", idx, w)
	}
	for _, label := range t.Labels {
		if err := validateLabel(label); err != nil {
			return errors.Wrapf(err, "transaction %d", idx)
		}
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return errors.Wrap(ErrInvalidLabel, "empty label")
	}
	if strings.Contains(label, keySeparator) {
		return errors.Wrapf(ErrInvalidLabel, "label %q contains the key separator", label)
	}
	return nil
}

// ExcludeLabels returns a copy of trns with the unwanted labels removed from every
// transaction. Transactions left without labels are kept; they simply never reach the tree.
func ExcludeLabels(trns []Transaction, unwanted []string) []Transaction {
	if len(unwanted) == 0 {
		return trns
	}
	drop := make(map[string]bool, len(unwanted))
	for _, u := range unwanted {
		drop[u] = true
	}
	res := make([]Transaction, 0, len(trns))
	for _, t := range trns {
		labels := make([]string, 0, len(t.Labels))
		for _, l := range t.Labels {
			if !drop[l] {
				labels = append(labels, l)
			}
		}
		res = append(res, Transaction{Labels: labels, Weight: t.Weight})
	}
	return res
}

package fptree

import (
	log "github.com/sirupsen/logrus"
)

// FilterFrequentItems sums each label's weight once per transaction and keeps the
// labels whose total meets both minSupport and minOccurrences.
func FilterFrequentItems(trns []Transaction, minSupport, minOccurrences float64) (FrequentItems, error) {
	cfg := Config{MinSupport: minSupport, MinOccurrences: minOccurrences}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for idx, t := range trns {
		if err := validateTransaction(idx, t); err != nil {
			return nil, err
		}
	}
	freq := filterFrequentItems(trns, cfg)
	log.Debugf("frequent items:%d of transactions:%d", len(freq), len(trns))
	return freq, nil
}

// filterFrequentItems assumes validated input. Conditional pattern bases are built
// from node counts and skip validation.
func filterFrequentItems(trns []Transaction, cfg Config) FrequentItems {
	counts := make(map[string]float64)
	seen := make(map[string]bool)
	for _, t := range trns {
		w := t.ResolvedWeight()
		for k := range seen {
			delete(seen, k)
		}
		for _, label := range t.Labels {
			if seen[label] {
				continue
			}
			seen[label] = true
			counts[label] += w
		}
	}

	freq := make(FrequentItems, len(counts))
	for label, c := range counts {
		if c >= cfg.MinSupport && c >= cfg.MinOccurrences {
			freq[label] = c
		}
	}
	return freq
}

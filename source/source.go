// Package source loads weighted transactions from CSV or JSON lines files.
package source

import (
	"bufio"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"
	fp "github.com/wyciszone/fpgrowth-with-weight/fptree"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const maxLineBytes = 20 * 1024 * 1024

var ErrUnsupportedFormat = errors.New("unsupported transactions file")

type CSVOptions struct {
	LabelColumn    string
	WeightColumn   string
	LabelSeparator string
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{LabelColumn: "tags", WeightColumn: "num_hits", LabelSeparator: ","}
}

// ReadCSV reads a headed table. The label cell holds separator-joined labels,
// optionally wrapped as a list literal like ['a', 'b']. An empty or missing
// weight cell leaves the weight unset.
func ReadCSV(r io.Reader, opts CSVOptions) ([]fp.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []fp.Transaction{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	labelCol, weightCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.LabelColumn:
			labelCol = i
		case opts.WeightColumn:
			weightCol = i
		}
	}
	if labelCol < 0 {
		return nil, errors.Errorf("label column %q not in header %v", opts.LabelColumn, header)
	}

	trns := make([]fp.Transaction, 0)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv row %d", row)
		}
		var tr fp.Transaction
		if labelCol < len(record) {
			tr.Labels = splitLabels(record[labelCol], opts.LabelSeparator)
		}
		if weightCol >= 0 && weightCol < len(record) {
			cell := strings.TrimSpace(record[weightCol])
			if cell != "" {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.Wrapf(err, "row %d: weight %q", row, cell)
				}
				tr.Weight = &v
			}
		}
		trns = append(trns, tr)
	}
	log.Debugf("read csv transactions:%d", len(trns))
	return trns, nil
}

func splitLabels(cell, sep string) []string {
	cell = strings.TrimSpace(cell)
	if strings.HasPrefix(cell, "[") && strings.HasSuffix(cell, "]") {
		cell = cell[1 : len(cell)-1]
	}
	labels := make([]string, 0)
	if sep == "" {
		sep = ","
	}
	for _, l := range strings.Split(cell, sep) {
		l = strings.Trim(strings.TrimSpace(l), `'"`)
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// TransactionLine is one line of a JSON lines transactions file.
type TransactionLine struct {
	Tags   []string `json:"tags"`
	Weight *float64 `json:"weight,omitempty"`
}

func ReadJSONLines(r io.Reader) ([]fp.Transaction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	trns := make([]fp.Transaction, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var tl TransactionLine
		if err := json.Unmarshal([]byte(line), &tl); err != nil {
			log.WithFields(log.Fields{"line": lineNo, "err": err}).Error("Read failed")
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		trns = append(trns, fp.Transaction{Labels: tl.Tags, Weight: tl.Weight})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read json lines")
	}
	return trns, nil
}

// Load reads dir/fileName through fm, choosing the parser by extension.
func Load(fm filestore.FileManager, dir, fileName string, opts CSVOptions) ([]fp.Transaction, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".csv" && ext != ".jsonl" && ext != ".json" && ext != ".txt" {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", fileName)
	}

	rc, err := fm.Get(dir, fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s%s", dir, fileName)
	}
	defer rc.Close()

	if ext == ".csv" {
		return ReadCSV(rc, opts)
	}
	return ReadJSONLines(rc)
}

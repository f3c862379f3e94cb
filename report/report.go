package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wyciszone/fpgrowth-with-weight/filestore"
	fp "github.com/wyciszone/fpgrowth-with-weight/fptree"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultLimit = 10000

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ColumnTags   = "Tags"
	ColumnWeight = "Weighted_Popularity"

	sheetName = "Sheet1"
)

type Row struct {
	Items              []string `json:"items"`
	Tags               string   `json:"label"`
	WeightedPopularity float64  `json:"weight"`
}

// SelectTop sorts by descending weight and keeps the first n patterns; n <= 0 keeps all.
func SelectTop(pm fp.PatternMap, n int) []fp.Pattern {
	patterns := pm.Patterns()
	if n > 0 && len(patterns) > n {
		patterns = patterns[:n]
	}
	return patterns
}

func Render(p fp.Pattern) string {
	return strings.Join(p.Items, ", ")
}

func Rows(patterns []fp.Pattern) []Row {
	rows := make([]Row, 0, len(patterns))
	for _, p := range patterns {
		rows = append(rows, Row{Items: p.Items, Tags: Render(p), WeightedPopularity: p.Count})
	}
	return rows
}

// GroupByLength buckets rows by the number of labels, keeping their order.
func GroupByLength(rows []Row) map[int][]Row {
	res := make(map[int][]Row)
	for _, r := range rows {
		res[len(r.Items)] = append(res[len(r.Items)], r)
	}
	return res
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnTags, ColumnWeight}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Tags, formatWeight(r.WeightedPopularity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	if err := f.SetCellValue(sheetName, "A1", ColumnTags); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "B1", ColumnWeight); err != nil {
		return err
	}
	for i, r := range rows {
		tagsCell, _ := excelize.CoordinatesToCellName(1, i+2)
		weightCell, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := f.SetCellValue(sheetName, tagsCell, r.Tags); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, weightCell, r.WeightedPopularity); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("report format [ %s ] not recognised", format)
}

// Export renders rows in format and stores them as dir/fileName through fm.
func Export(fm filestore.FileManager, dir, fileName, format string, rows []Row) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, rows); err != nil {
		return errors.Wrap(err, "render report")
	}
	if err := fm.Create(dir, fileName, bytes.NewReader(buf.Bytes())); err != nil {
		log.WithFields(log.Fields{"dir": dir, "file": fileName}).WithError(err).Error("Failed to store report")
		return errors.Wrap(err, "store report")
	}
	log.WithFields(log.Fields{"dir": dir, "file": fileName, "rows": len(rows)}).Info("Report written")
	return nil
}

package source

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wyciszone/fpgrowth-with-weight/services/disk"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fanficCSV = `title,tags,num_hits
First,"Fluff, Angst, Hurt/Comfort",300
Second,"['Angst', 'Alternate Universe']",120
Third,Fluff,
`

func TestReadCSV(t *testing.T) {
	trns, err := ReadCSV(strings.NewReader(fanficCSV), DefaultCSVOptions())
	require.Nil(t, err)
	require.Len(t, trns, 3)

	assert.Equal(t, []string{"Fluff", "Angst", "Hurt/Comfort"}, trns[0].Labels)
	assert.Equal(t, 300.0, trns[0].ResolvedWeight())
	assert.Equal(t, []string{"Angst", "Alternate Universe"}, trns[1].Labels)
	assert.Equal(t, 120.0, trns[1].ResolvedWeight())
	assert.Nil(t, trns[2].Weight)
	assert.Equal(t, 1.0, trns[2].ResolvedWeight())
}

func TestReadCSVCustomColumns(t *testing.T) {
	data := "labels,score\na|b,2.5\n"
	opts := CSVOptions{LabelColumn: "labels", WeightColumn: "score", LabelSeparator: "|"}
	trns, err := ReadCSV(strings.NewReader(data), opts)
	require.Nil(t, err)
	require.Len(t, trns, 1)
	assert.Equal(t, []string{"a", "b"}, trns[0].Labels)
	assert.Equal(t, 2.5, trns[0].ResolvedWeight())
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("title,num_hits\nx,1\n"), DefaultCSVOptions())
	assert.NotNil(t, err, "missing label column")

	_, err = ReadCSV(strings.NewReader("tags,num_hits\nx,lots\n"), DefaultCSVOptions())
	assert.NotNil(t, err, "bad weight")

	trns, err := ReadCSV(strings.NewReader(""), DefaultCSVOptions())
	assert.Nil(t, err)
	assert.Empty(t, trns)
}

func TestReadJSONLines(t *testing.T) {
	data := `{"tags":["a","b"],"weight":3}

{"tags":["a"]}
`
	trns, err := ReadJSONLines(strings.NewReader(data))
	require.Nil(t, err)
	require.Len(t, trns, 2)
	assert.Equal(t, []string{"a", "b"}, trns[0].Labels)
	assert.Equal(t, 3.0, trns[0].ResolvedWeight())
	assert.Nil(t, trns[1].Weight)

	_, err = ReadJSONLines(strings.NewReader("{\"tags\":"))
	assert.NotNil(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	dd := disk.New(dir)
	require.Nil(t, dd.Create(dir, "fanfics.csv", bytes.NewReader([]byte(fanficCSV))))
	require.Nil(t, dd.Create(dir, "fanfics.jsonl", bytes.NewReader([]byte(`{"tags":["x"],"weight":2}`+"\n"))))

	trns, err := Load(dd, dir, "fanfics.csv", DefaultCSVOptions())
	require.Nil(t, err)
	assert.Len(t, trns, 3)

	trns, err = Load(dd, dir, "fanfics.jsonl", DefaultCSVOptions())
	require.Nil(t, err)
	assert.Len(t, trns, 1)

	_, err = Load(dd, dir, "fanfics.parquet", DefaultCSVOptions())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(dd, dir, "missing.csv", DefaultCSVOptions())
	assert.NotNil(t, err)
}

func TestLoadDiskPathUsedAsGiven(t *testing.T) {
	inputDir := t.TempDir()
	dd := disk.New(t.TempDir())
	require.Nil(t, dd.Create(inputDir, "fanfics.csv", bytes.NewReader([]byte(fanficCSV))))

	trns, err := Load(dd, inputDir, "fanfics.csv", DefaultCSVOptions())
	require.Nil(t, err)
	assert.Len(t, trns, 3)

	// not resolved against the driver's base dir
	_, err = Load(dd, "", "fanfics.csv", DefaultCSVOptions())
	assert.NotNil(t, err)
}

package datafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gorandtest/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewReaderPicksType(t *testing.T) {
	assert.Equal(t, FileTypeText, NewReader("group_a.dat").Type())
	assert.Equal(t, FileTypeText, NewReader("group_a").Type())
	assert.Equal(t, FileTypeCSV, NewReader("GROUP.CSV").Type())
	assert.Equal(t, FileTypeXLSX, NewReader("book.xlsx").Type())
}

func TestParseText(t *testing.T) {
	sample, err := ParseText(strings.NewReader("# treatment\n101\n 100 \n\n102 104\n-3.5e1\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{101, 100, 102, 104, -35}, sample)
}

func TestParseTextRejectsGarbage(t *testing.T) {
	tests := []string{"1\ntwo\n3", "1\nNaN\n", "Inf"}
	for _, input := range tests {
		_, err := ParseText(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr string
	}{
		{"header skipped", "score,extra\n1,2\n3,\n 4 ,5\n", []float64{1, 2, 3, 4, 5}, ""},
		{"no header", "1.5,2.5\n4\n", []float64{1.5, 2.5, 4}, ""},
		{"text below data", "1\nx\n", nil, "row 2"},
		{"mixed first row", "1.5,2.5,3x\n4\n5\n", nil, "row 1"},
		{"number in header", "score,7\n1\n", nil, "row 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := ParseCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, sample)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sample)
		})
	}
}

func TestReadSampleText(t *testing.T) {
	path := writeFile(t, "drug.dat", "5\n6\n")
	sample, err := ReadSample(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, sample)
}

func TestReadSampleErrorsAreInvalidInput(t *testing.T) {
	empty := writeFile(t, "empty.dat", "# nothing here\n\n")
	bad := writeFile(t, "bad.csv", "1\n2\nthree\n")
	missing := filepath.Join(t.TempDir(), "missing.dat")

	for _, path := range []string{empty, bad, missing} {
		_, err := ReadSample(path)
		require.Error(t, err, path)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), path)
	}
}

func TestReadSampleExcel(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "placebo"))
	for i, v := range []float64{99, 101, 100.5} {
		cell, err := excelize.CoordinatesToCellName(2, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(t.TempDir(), "placebo.xlsx")
	require.NoError(t, f.SaveAs(path))

	sample, err := ReadSample(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{99, 101, 100.5}, sample)
}

func TestReadSampleExcelRejectsTextBelowData(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	require.NoError(t, f.SetCellValue("Sheet1", "A1", 1))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "oops"))
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := ReadSample(path)
	assert.ErrorContains(t, err, "cell A2")
}

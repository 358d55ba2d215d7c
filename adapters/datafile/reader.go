// Package datafile loads one sample of numbers from a file. Plain text files
// hold one or more numbers per line, .csv files are read cell by cell and
// .xlsx workbooks contribute the first numeric column of their first sheet.
package datafile

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gorandtest/internal/errors"
)

// FileType identifies how a sample file is parsed
type FileType string

const (
	FileTypeText FileType = "text"
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// Reader reads a sample file
type Reader struct {
	filePath string
	fileType FileType
}

// NewReader picks the parser from the file extension. Anything that is not
// .csv or .xlsx is treated as text.
func NewReader(filePath string) *Reader {
	fileType := FileTypeText
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = FileTypeCSV
	case ".xlsx":
		fileType = FileTypeXLSX
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Type returns the parser the reader will use
func (r *Reader) Type() FileType {
	return r.fileType
}

// ReadSample is shorthand for NewReader(path).Read()
func ReadSample(path string) ([]float64, error) {
	return NewReader(path).Read()
}

// Read parses the whole file. Malformed numbers are rejected, never skipped,
// and an empty sample is an error.
func (r *Reader) Read() ([]float64, error) {
	var (
		sample []float64
		err    error
	)
	switch r.fileType {
	case FileTypeXLSX:
		sample, err = r.readExcel()
	default:
		f, openErr := os.Open(r.filePath)
		if openErr != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("cannot open %s", r.filePath), openErr)
		}
		defer f.Close()
		if r.fileType == FileTypeCSV {
			sample, err = ParseCSV(f)
		} else {
			sample, err = ParseText(f)
		}
	}
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("cannot read %s", r.filePath), err)
	}
	if len(sample) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s contains no numbers", r.filePath), nil)
	}
	return sample, nil
}

// ParseText reads whitespace separated numbers. Blank lines and lines starting
// with '#' are ignored.
func ParseText(in io.Reader) ([]float64, error) {
	var sample []float64
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		for _, field := range strings.Fields(text) {
			v, err := parseNumber(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			sample = append(sample, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sample, nil
}

// ParseCSV reads every non-empty cell. A first row without a single number is
// taken as a header and skipped; a first row mixing numbers and text is an
// error.
func ParseCSV(in io.Reader) ([]float64, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var sample []float64
	row := 0
	for {
		record, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		values, err := parseRow(record)
		if err != nil {
			if row == 1 && isHeader(record) {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		sample = append(sample, values...)
	}
	return sample, nil
}

func parseRow(record []string) ([]float64, error) {
	values := make([]float64, 0, len(record))
	for _, cell := range record {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		v, err := parseNumber(cell)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func isHeader(record []string) bool {
	for _, cell := range record {
		if _, err := parseNumber(strings.TrimSpace(cell)); err == nil {
			return false
		}
	}
	return true
}

// readExcel takes the first column of the first sheet that holds a number and
// reads it down to the last row; a non-numeric cell above the first number is
// a header.
func (r *Reader) readExcel() ([]float64, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}

	column := -1
	start := 0
	for i, row := range rows {
		for j, cell := range row {
			if _, err := parseNumber(strings.TrimSpace(cell)); err == nil {
				column, start = j, i
				break
			}
		}
		if column >= 0 {
			break
		}
	}
	if column < 0 {
		return nil, nil
	}

	var sample []float64
	for i := start; i < len(rows); i++ {
		if column >= len(rows[i]) {
			continue
		}
		cell := strings.TrimSpace(rows[i][column])
		if cell == "" {
			continue
		}
		v, err := parseNumber(cell)
		if err != nil {
			cellName, _ := excelize.CoordinatesToCellName(column+1, i+1)
			return nil, fmt.Errorf("cell %s: %w", cellName, err)
		}
		sample = append(sample, v)
	}
	return sample, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

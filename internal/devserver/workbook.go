// Package devserver is a local stand-in for the news webhook. It serves the
// same read and comment endpoints from an .xlsx workbook holding one sheet
// per day.
package devserver

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/yueh722/Web3-news-app/internal/news"
)

// SheetLayout names a day's sheet. Sheet names cannot contain '/'.
const SheetLayout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrRowNotFound   = errors.New("row not found")
	ErrSheetExists   = errors.New("sheet already exists")
)

// Columns written for a new day, in order.
var Columns = []string{
	news.FieldSerialNo,
	news.FieldTitle,
	news.FieldURL,
	news.FieldRationale,
	news.FieldScore,
	news.FieldTopic,
	news.FieldComment,
}

// Workbook guards one xlsx file. Every mutation is saved before it returns.
type Workbook struct {
	path string

	mu   sync.Mutex
	file *xlsx.File
}

// OpenWorkbook loads path, or starts an empty workbook when it does not exist.
func OpenWorkbook(path string) (*Workbook, error) {
	var file *xlsx.File
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		file = xlsx.NewFile()
	} else {
		file, err = xlsx.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening workbook %s: %w", path, err)
		}
	}
	return &Workbook{path: path, file: file}, nil
}

func (w *Workbook) Path() string {
	return w.path
}

// SheetName maps a partition key (2006/01/02) to its sheet name.
func SheetName(dateKey string) (string, error) {
	d, err := time.Parse(news.DateLayout, strings.TrimSpace(dateKey))
	if err != nil {
		return "", fmt.Errorf("%w %q, want YYYY/MM/DD", ErrInvalidDate, dateKey)
	}
	return d.Format(SheetLayout), nil
}

// Record is one data row. RowNumber is the 1-based sheet row, the header
// being row 1; it is what comments are addressed by.
type Record struct {
	RowNumber int
	Fields    map[string]any
}

// Records returns the data rows of the day's sheet. Blank rows are skipped.
func (w *Workbook) Records(dateKey string) ([]Record, error) {
	name, err := SheetName(dateKey)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	sheet, ok := w.file.Sheet[name]
	if !ok {
		return nil, ErrSheetNotFound
	}
	header, err := readHeader(sheet)
	if err != nil {
		return nil, err
	}

	var records []Record
	for r := 1; r < sheet.MaxRow; r++ {
		fields := make(map[string]any, len(header))
		blank := true
		for c, key := range header {
			if key == "" {
				continue
			}
			cell, err := sheet.Cell(r, c)
			if err != nil {
				return nil, fmt.Errorf("reading %s row %d: %w", name, r+1, err)
			}
			v := cellValue(cell)
			if v != "" {
				blank = false
			}
			fields[key] = v
		}
		if blank {
			continue
		}
		records = append(records, Record{RowNumber: r + 1, Fields: fields})
	}
	return records, nil
}

func readHeader(sheet *xlsx.Sheet) ([]string, error) {
	if sheet.MaxRow == 0 {
		return nil, nil
	}
	header := make([]string, sheet.MaxCol)
	for c := 0; c < sheet.MaxCol; c++ {
		cell, err := sheet.Cell(0, c)
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		header[c] = strings.TrimSpace(cell.String())
	}
	return header, nil
}

// cellValue keeps numeric cells numeric so scores come out as JSON numbers.
func cellValue(cell *xlsx.Cell) any {
	if cell.Type() == xlsx.CellTypeNumeric {
		if i, err := cell.Int(); err == nil && strconv.Itoa(i) == cell.Value {
			return i
		}
		if f, err := cell.Float(); err == nil {
			return f
		}
	}
	return strings.TrimSpace(cell.String())
}

// SetComment writes the comment cell of rowNumber (1-based, as returned by
// Records) in the day's sheet and saves the workbook.
func (w *Workbook) SetComment(dateKey string, rowNumber int, comment string) error {
	name, err := SheetName(dateKey)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	sheet, ok := w.file.Sheet[name]
	if !ok {
		return ErrSheetNotFound
	}
	if rowNumber < 2 || rowNumber > sheet.MaxRow {
		return ErrRowNotFound
	}
	header, err := readHeader(sheet)
	if err != nil {
		return err
	}

	col := -1
	for i, key := range header {
		if key == news.FieldComment {
			col = i
			break
		}
	}
	if col < 0 {
		// Older sheets may lack the comment column.
		col = len(header)
		headerRow, err := sheet.Row(0)
		if err != nil {
			return fmt.Errorf("reading header: %w", err)
		}
		headerRow.GetCell(col).SetString(news.FieldComment)
	}

	row, err := sheet.Row(rowNumber - 1)
	if err != nil {
		return fmt.Errorf("reading %s row %d: %w", name, rowNumber, err)
	}
	row.GetCell(col).SetString(comment)

	return w.save()
}

// AddDay creates the day's sheet holding items, in order.
func (w *Workbook) AddDay(dateKey string, items []news.NewsItem) error {
	name, err := SheetName(dateKey)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.file.Sheet[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrSheetExists)
	}
	sheet, err := w.file.AddSheet(name)
	if err != nil {
		return fmt.Errorf("adding sheet %s: %w", name, err)
	}

	headerRow := sheet.AddRow()
	for _, h := range Columns {
		headerRow.AddCell().SetString(h)
	}
	for _, it := range items {
		row := sheet.AddRow()
		setNumberOrString(row.AddCell(), it.SerialNo)
		row.AddCell().SetString(it.Title)
		row.AddCell().SetString(it.URL)
		row.AddCell().SetString(it.Rationale)
		setNumberOrString(row.AddCell(), it.Score)
		row.AddCell().SetString(it.Topic)
		row.AddCell().SetString(it.Comment)
	}

	return w.save()
}

func setNumberOrString(cell *xlsx.Cell, v string) {
	if i, err := strconv.Atoi(v); err == nil {
		cell.SetInt(i)
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		cell.SetFloat(f)
		return
	}
	cell.SetString(v)
}

// Days lists the partition keys present in the workbook.
func (w *Workbook) Days() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var days []string
	for _, sheet := range w.file.Sheets {
		d, err := time.Parse(SheetLayout, sheet.Name)
		if err != nil {
			continue
		}
		days = append(days, d.Format(news.DateLayout))
	}
	return days
}

func (w *Workbook) save() error {
	if err := w.file.Save(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

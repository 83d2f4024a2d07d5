package devserver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yueh722/Web3-news-app/internal/news"
)

func sampleItems() []news.NewsItem {
	return []news.NewsItem{
		{SerialNo: "1", Title: "ETH upgrade", URL: "https://example.com/eth", Rationale: "big", Score: "8", Topic: "L1"},
		{SerialNo: "2", Title: "BTC ETF flows", URL: "https://example.com/btc", Score: "7.5", Topic: "ETF"},
	}
}

func newWorkbook(t *testing.T) *Workbook {
	t.Helper()
	wb, err := OpenWorkbook(filepath.Join(t.TempDir(), "news.xlsx"))
	require.NoError(t, err)
	return wb
}

func TestSheetName(t *testing.T) {
	name, err := SheetName("2024/03/10")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", name)

	_, err = SheetName("2024-03-10")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = SheetName("")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestAddDayAndRecords(t *testing.T) {
	wb := newWorkbook(t)
	require.NoError(t, wb.AddDay("2024/03/10", sampleItems()))

	recs, err := wb.Records("2024/03/10")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, 2, recs[0].RowNumber)
	assert.Equal(t, 3, recs[1].RowNumber)
	assert.Equal(t, "ETH upgrade", recs[0].Fields[news.FieldTitle])
	assert.Equal(t, 8, recs[0].Fields[news.FieldScore])
	assert.Equal(t, 7.5, recs[1].Fields[news.FieldScore])
	assert.Equal(t, "", recs[1].Fields[news.FieldRationale])

	assert.Equal(t, []string{"2024/03/10"}, wb.Days())
}

func TestAddDayTwice(t *testing.T) {
	wb := newWorkbook(t)
	require.NoError(t, wb.AddDay("2024/03/10", sampleItems()))
	assert.ErrorIs(t, wb.AddDay("2024/03/10", nil), ErrSheetExists)
}

func TestRecordsMissingSheet(t *testing.T) {
	wb := newWorkbook(t)
	_, err := wb.Records("2024/03/10")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestEmptyDay(t *testing.T) {
	wb := newWorkbook(t)
	require.NoError(t, wb.AddDay("2024/03/10", nil))
	recs, err := wb.Records("2024/03/10")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSetCommentPersists(t *testing.T) {
	wb := newWorkbook(t)
	require.NoError(t, wb.AddDay("2024/03/10", sampleItems()))
	require.NoError(t, wb.SetComment("2024/03/10", 3, "watch inflows"))

	reopened, err := OpenWorkbook(wb.Path())
	require.NoError(t, err)
	recs, err := reopened.Records("2024/03/10")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "", recs[0].Fields[news.FieldComment])
	assert.Equal(t, "watch inflows", recs[1].Fields[news.FieldComment])
}

func TestSetCommentErrors(t *testing.T) {
	wb := newWorkbook(t)
	require.NoError(t, wb.AddDay("2024/03/10", sampleItems()))

	tests := []struct {
		name    string
		date    string
		row     int
		wantErr error
	}{
		{"missing sheet", "2024/03/11", 2, ErrSheetNotFound},
		{"header row", "2024/03/10", 1, ErrRowNotFound},
		{"past last row", "2024/03/10", 4, ErrRowNotFound},
		{"bad date", "10-03-2024", 2, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wb.SetComment(tt.date, tt.row, "x")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

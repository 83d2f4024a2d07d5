// Package news talks to the news webhook: fetch a day's items by date
// partition and write a comment back to one row.
package news

import "fmt"

// Backend field names as they appear in the spreadsheet header.
const (
	FieldRowID     = "列號"
	FieldSerialNo  = "sno"
	FieldTitle     = "標題"
	FieldURL       = "url"
	FieldRationale = "ai評選原因"
	FieldScore     = "分數"
	FieldTopic     = "主題"
	FieldComment   = "評論"
	FieldDate      = "日期"
)

// TitlePlaceholder is shown for items whose title is blank.
const TitlePlaceholder = "無標題"

// DateLayout is the partition key format, e.g. 2025/01/31.
const DateLayout = "2006/01/02"

type NewsItem struct {
	RowID     string `json:"row_id"`
	SerialNo  string `json:"sno"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Rationale string `json:"rationale"`
	Score     string `json:"score"`
	Topic     string `json:"topic"`
	Comment   string `json:"comment"`
	Date      string `json:"date"`
}

type FetchKind int

const (
	FetchData FetchKind = iota
	FetchEmpty
	FetchWarning
	FetchError
)

func (k FetchKind) String() string {
	switch k {
	case FetchData:
		return "data"
	case FetchEmpty:
		return "empty"
	case FetchWarning:
		return "warning"
	case FetchError:
		return "error"
	default:
		return fmt.Sprintf("FetchKind(%d)", int(k))
	}
}

// FetchResult is the outcome of reading one date partition. Items is only
// set for FetchData; Message only for FetchWarning and FetchError.
type FetchResult struct {
	Kind    FetchKind  `json:"kind"`
	Items   []NewsItem `json:"items,omitempty"`
	Message string     `json:"message,omitempty"`
}

func DataResult(items []NewsItem) FetchResult {
	return FetchResult{Kind: FetchData, Items: items}
}

func EmptyResult() FetchResult {
	return FetchResult{Kind: FetchEmpty}
}

func WarningResult(msg string) FetchResult {
	return FetchResult{Kind: FetchWarning, Message: msg}
}

func ErrorResult(msg string) FetchResult {
	return FetchResult{Kind: FetchError, Message: msg}
}

type CommentResult struct {
	OK      bool
	Message string
}

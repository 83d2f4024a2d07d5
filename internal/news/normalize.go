package news

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// Alternate header names accepted for a field. row_number is what the
// automation's spreadsheet node adds to every row it reads.
var fieldAliases = map[string][]string{
	FieldRowID: {FieldRowID, "row_number", "rowIndex"},
	FieldDate:  {FieldDate, "date"},
}

// parseNews turns a read-endpoint body into items. It returns ErrNoData for
// an empty day, *noticeError for the backend's message-only reply, and
// *MalformedResponseError for anything it cannot use.
func parseNews(body []byte, dateKey string) ([]NewsItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrNoData
	}
	if !gjson.ValidBytes(body) {
		return nil, malformed("body is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	if root.IsObject() {
		if msg, ok := messageOnly(unwrap(root)); ok {
			return nil, &noticeError{Message: msg}
		}
		return nil, malformed("expected a list of records, got an object")
	}
	if !root.IsArray() {
		return nil, malformed("expected a list of records, got %s", root.Type)
	}

	records := root.Array()
	if len(records) == 0 {
		return nil, ErrNoData
	}
	if len(records) == 1 {
		if msg, ok := messageOnly(unwrap(records[0])); ok {
			return nil, &noticeError{Message: msg}
		}
	}

	items := make([]NewsItem, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		rec = unwrap(rec)
		if !rec.IsObject() {
			return nil, malformed("record %d is %s, not an object", i+1, rec.Type)
		}
		fields := collect(rec)
		if len(fields) == 0 {
			continue
		}
		item := toItem(fields, dateKey)
		if item.RowID == "" {
			return nil, malformed("record %d has no row identifier", i+1)
		}
		if seen[item.RowID] {
			return nil, malformed("duplicate row identifier %s", item.RowID)
		}
		seen[item.RowID] = true
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrNoData
	}
	return items, nil
}

// unwrap returns the record under a "json" key when present.
func unwrap(rec gjson.Result) gjson.Result {
	if !rec.IsObject() {
		return rec
	}
	if inner := rec.Get("json"); inner.IsObject() {
		return inner
	}
	return rec
}

func messageOnly(rec gjson.Result) (string, bool) {
	if !rec.IsObject() {
		return "", false
	}
	fields := collect(rec)
	msg, ok := fields["message"]
	if !ok || len(fields) != 1 {
		return "", false
	}
	return text(msg), true
}

// collect reads keys literally. gjson paths treat '.', '*' and '?' as
// syntax, and header names are user-controlled.
func collect(rec gjson.Result) map[string]gjson.Result {
	fields := make(map[string]gjson.Result)
	rec.ForEach(func(k, v gjson.Result) bool {
		fields[k.String()] = v
		return true
	})
	return fields
}

func toItem(fields map[string]gjson.Result, dateKey string) NewsItem {
	get := func(name string) string {
		names := fieldAliases[name]
		if names == nil {
			names = []string{name}
		}
		for _, n := range names {
			if v, ok := fields[n]; ok {
				if s := text(v); s != "" {
					return s
				}
			}
		}
		return ""
	}

	item := NewsItem{
		RowID:     get(FieldRowID),
		SerialNo:  get(FieldSerialNo),
		Title:     get(FieldTitle),
		URL:       get(FieldURL),
		Rationale: get(FieldRationale),
		Score:     get(FieldScore),
		Topic:     get(FieldTopic),
		Comment:   get(FieldComment),
		Date:      get(FieldDate),
	}
	if strings.TrimSpace(item.Title) == "" {
		item.Title = TitlePlaceholder
	}
	if item.Date == "" {
		item.Date = dateKey
	}
	return item
}

// text renders any JSON value as display text. Numbers keep their JSON
// spelling so 8.50 stays 8.50.
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return strings.TrimSpace(v.Str)
	default:
		return v.Raw
	}
}

// commentMessage extracts "message" from a write-endpoint reply, which is
// either an object or a one-element list.
func commentMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		root = root.Get("0")
	}
	return text(unwrap(root).Get("message"))
}

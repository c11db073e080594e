package newsdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// apiResponse represents the newsdata.io latest-news response structure.
type apiResponse struct {
	Status       string   `json:"status"`
	TotalResults int      `json:"totalResults"`
	Results      []result `json:"results"`
}

type result struct {
	Title       Field `json:"title"`
	Description Field `json:"description"`
	PubDate     Field `json:"pubDate"`
	SourceID    Field `json:"source_id"`
	Link        Field `json:"link"`
	Country     Field `json:"country"`
}

type fieldKind int

const (
	fieldAbsent fieldKind = iota
	fieldString
	fieldList
)

// Field is a sum type over the shapes the upstream uses for article
// attributes: a plain string, a list of strings, or absent/null. Numeric
// values are accepted and coerced to their decimal form.
type Field struct {
	kind fieldKind
	str  string
	list []string
}

func (f *Field) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = Field{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Field{kind: fieldString, str: s}
		return nil
	}

	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		items := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case string:
				items = append(items, v)
			case float64:
				items = append(items, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		*f = Field{kind: fieldList, list: items}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = Field{kind: fieldString, str: strconv.FormatFloat(n, 'f', -1, 64)}
		return nil
	}

	return fmt.Errorf("unsupported field shape: %s", trimmed)
}

// Join converts the field to a single string: strings pass through, lists
// are comma-joined with empty items dropped, absent yields "".
func (f Field) Join() string {
	switch f.kind {
	case fieldString:
		return f.str
	case fieldList:
		parts := make([]string, 0, len(f.list))
		for _, item := range f.list {
			if item != "" {
				parts = append(parts, item)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// IsAbsent reports whether the upstream omitted the field entirely.
func (f Field) IsAbsent() bool {
	return f.kind == fieldAbsent
}

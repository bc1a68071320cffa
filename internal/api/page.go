package api

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Page is the backend's pagination envelope. The page number arrives either
// as a top-level "number" or nested under "pageable.pageNumber" depending on
// the endpoint; both are accepted and stored as Number.
type Page[T any] struct {
	Content    []T
	TotalPages int
	Number     int
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Content    []T `json:"content"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode page envelope: %w", err)
	}
	p.Content = envelope.Content
	p.TotalPages = envelope.TotalPages

	if n := gjson.GetBytes(data, "number"); n.Exists() {
		p.Number = int(n.Int())
	} else if n := gjson.GetBytes(data, "pageable.pageNumber"); n.Exists() {
		p.Number = int(n.Int())
	}
	return nil
}

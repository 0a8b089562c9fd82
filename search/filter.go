package search

import (
	"fmt"
	"strings"

	"insyn-search/loader"
	"insyn-search/models"
)

// RecordFilter narrows the records of one registry response to those
// matching a free-text query. Implementations keep the input order.
type RecordFilter interface {
	Filter(records []models.Record, text string) ([]models.Record, error)
}

const (
	KindBleve     = "bleve"
	KindSubstring = "substring"
)

// NewFilter returns the filter registered under kind.
func NewFilter(kind string) (RecordFilter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindBleve:
		return NewBleveFilter(), nil
	case KindSubstring:
		return NewSubstringFilter(), nil
	default:
		return nil, fmt.Errorf("unknown record filter %q", kind)
	}
}

type SubstringFilter struct{}

func NewSubstringFilter() *SubstringFilter {
	return &SubstringFilter{}
}

// Filter keeps records where any value contains text, ignoring case.
func (f *SubstringFilter) Filter(records []models.Record, text string) ([]models.Record, error) {
	q := strings.ToLower(loader.Normalize(strings.TrimSpace(text)))
	if q == "" {
		return records, nil
	}

	results := make([]models.Record, 0, len(records))
	for _, record := range records {
		for _, value := range record {
			if strings.Contains(strings.ToLower(value), q) {
				results = append(results, record)
				break
			}
		}
	}
	return results, nil
}

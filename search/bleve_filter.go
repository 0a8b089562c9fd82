package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"insyn-search/loader"
	"insyn-search/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// BleveFilter indexes a single response in memory and discards the index
// afterwards. Nothing is shared between calls.
type BleveFilter struct{}

func NewBleveFilter() *BleveFilter {
	return &BleveFilter{}
}

func buildIndexMapping() mapping.IndexMapping {
	// Column names vary by export, so every string field is mapped dynamically
	// and folded into _all.
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping.Dynamic = true
	return indexMapping
}

func (f *BleveFilter) Filter(records []models.Record, text string) ([]models.Record, error) {
	// Records are NFKD, so the query must be too.
	q := loader.Normalize(strings.TrimSpace(text))
	if q == "" || len(records) == 0 {
		return records, nil
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, record := range records {
		doc := make(map[string]interface{}, len(record))
		for k, v := range record {
			doc[k] = v
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return nil, fmt.Errorf("failed to add to batch: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}

	searchRequest := bleve.NewSearchRequest(buildQuery(q))
	searchRequest.Size = len(records)

	searchResults, err := index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	positions := make([]int, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	results := make([]models.Record, 0, len(positions))
	for _, pos := range positions {
		results = append(results, records[pos])
	}
	return results, nil
}

// buildQuery matches every term of a multi-word query. A single word also
// matches as a prefix so partial names still hit.
func buildQuery(text string) query.Query {
	matchQuery := bleve.NewMatchQuery(text)
	matchQuery.SetOperator(query.MatchQueryOperatorAnd)

	if len(strings.Fields(text)) > 1 {
		return matchQuery
	}

	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(text))
	return bleve.NewDisjunctionQuery(matchQuery, prefixQuery)
}

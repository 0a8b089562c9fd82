package search

import (
	"testing"

	"insyn-search/loader"
	"insyn-search/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{"Utgivare": "Axfood AB", "Person": "Anna Svensson", "Karaktär": "Förvärv"},
		{"Utgivare": "Axfood AB", "Person": "Klas Balkow", "Karaktär": "Avyttring"},
		{"Utgivare": "Axfood AB", "Person": loader.Normalize("Jörgen Ström"), "Karaktär": "Förvärv"},
		{"Utgivare": "Axfood AB", "Person": "Anna Karlsson"},
	}
}

func filters() map[string]RecordFilter {
	return map[string]RecordFilter{
		KindBleve:     NewBleveFilter(),
		KindSubstring: NewSubstringFilter(),
	}
}

func TestFilterMatchesWord(t *testing.T) {
	for name, f := range filters() {
		t.Run(name, func(t *testing.T) {
			results, err := f.Filter(sampleRecords(), "balkow")
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}
			if len(results) != 1 || results[0]["Person"] != "Klas Balkow" {
				t.Errorf("Expected Klas Balkow, got %v", results)
			}
		})
	}
}

func TestFilterKeepsOriginalOrder(t *testing.T) {
	for name, f := range filters() {
		t.Run(name, func(t *testing.T) {
			results, err := f.Filter(sampleRecords(), "anna")
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("Expected 2 results, got %d: %v", len(results), results)
			}
			if results[0]["Person"] != "Anna Svensson" || results[1]["Person"] != "Anna Karlsson" {
				t.Errorf("Results out of order: %v", results)
			}
		})
	}
}

func TestFilterMatchesComposedQueryAgainstDecomposedText(t *testing.T) {
	for name, f := range filters() {
		t.Run(name, func(t *testing.T) {
			results, err := f.Filter(sampleRecords(), "Jörgen")
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}
			if len(results) != 1 {
				t.Errorf("Expected 1 result, got %v", results)
			}
		})
	}
}

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	records := sampleRecords()
	for name, f := range filters() {
		t.Run(name, func(t *testing.T) {
			results, err := f.Filter(records, "   ")
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != len(records) {
				t.Errorf("Expected %d records, got %d", len(records), len(results))
			}
		})
	}
}

func TestBleveFilterPrefixAndNoMatch(t *testing.T) {
	f := NewBleveFilter()

	results, err := f.Filter(sampleRecords(), "svens")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0]["Person"] != "Anna Svensson" {
		t.Errorf("Expected prefix match on Svensson, got %v", results)
	}

	results, err = f.Filter(sampleRecords(), "ericsson")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
}

func TestNewFilter(t *testing.T) {
	if _, err := NewFilter("bleve"); err != nil {
		t.Errorf("Expected bleve filter, got %v", err)
	}
	if _, err := NewFilter("substring"); err != nil {
		t.Errorf("Expected substring filter, got %v", err)
	}
	if _, err := NewFilter("elastic"); err == nil {
		t.Errorf("Expected error for unknown filter")
	}
}

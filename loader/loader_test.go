package loader

import (
	"errors"
	"strings"
	"testing"
)

func TestParseRecordsDropsEmptyFields(t *testing.T) {
	records, stats, err := ParseRecords("A;B;C\n1;;3")
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(records[0]) != 2 {
		t.Errorf("Expected 2 fields, got %d: %v", len(records[0]), records[0])
	}
	if records[0]["A"] != "1" || records[0]["C"] != "3" {
		t.Errorf("Unexpected record: %v", records[0])
	}
	if _, ok := records[0]["B"]; ok {
		t.Errorf("Expected empty field B to be dropped")
	}
	if stats.Mismatched() {
		t.Errorf("Expected no mismatched rows, got %+v", stats)
	}
}

func TestParseRecordsHeaderOnly(t *testing.T) {
	for _, body := range []string{"Utgivare;Namn", "Utgivare;Namn\r\n"} {
		records, _, err := ParseRecords(body)
		if err != nil {
			t.Fatalf("ParseRecords(%q) failed: %v", body, err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("Expected empty non-nil sequence for %q, got %v", body, records)
		}
	}
}

func TestParseRecordsWithoutHeader(t *testing.T) {
	for _, body := range []string{"", "\n", "   \nA;B"} {
		_, _, err := ParseRecords(body)
		if !errors.Is(err, ErrNoHeader) {
			t.Errorf("Expected ErrNoHeader for %q, got %v", body, err)
		}
	}
}

func TestParseRecordsKeepsLineOrder(t *testing.T) {
	body := "Utgivare;Person;Volym\r\nAxfood AB;Anna;100\r\nAxfood AB;Bertil;200\r\n"
	records, _, err := ParseRecords(body)
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0]["Person"] != "Anna" || records[1]["Person"] != "Bertil" {
		t.Errorf("Records out of order: %v", records)
	}
	if records[1]["Volym"] != "200" {
		t.Errorf("Expected Volym 200, got %s", records[1]["Volym"])
	}
}

func TestParseRecordsBlankLineYieldsEmptyRecord(t *testing.T) {
	records, _, err := ParseRecords("A;B\n1;2\n\n3;4\n")
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if len(records[1]) != 0 {
		t.Errorf("Expected empty record for blank line, got %v", records[1])
	}
}

func TestParseRecordsTruncatesMismatchedRows(t *testing.T) {
	records, stats, err := ParseRecords("A;B;C\n1;2\n1;2;3;4")
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}

	if stats.ShortRows != 1 || stats.LongRows != 1 || stats.Rows != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if len(records[0]) != 2 || records[0]["B"] != "2" {
		t.Errorf("Unexpected short row: %v", records[0])
	}
	if len(records[1]) != 3 || records[1]["C"] != "3" {
		t.Errorf("Unexpected long row: %v", records[1])
	}
}

func TestParseRecordsDuplicateHeaderKeepsLastValue(t *testing.T) {
	records, _, err := ParseRecords("A;A\n1;")
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}
	if _, ok := records[0]["A"]; ok {
		t.Errorf("Expected A to be dropped since its last value is empty, got %v", records[0])
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"Jörgen Åström", "Axfood AB", "ﬁnans", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}

	if got := Normalize("\u00f6"); got != "o\u0308" {
		t.Errorf("Expected decomposed o with diaeresis, got %q", got)
	}
}

func TestDecodeBodySniffsEncoding(t *testing.T) {
	utf8Body := []byte("Utgivare;Person\nAxfood AB;J\u00f6rgen\n")
	latinBody := []byte("Utgivare;Person\nAxfood AB;J\xf6rgen\n")

	fromUTF8, err := DecodeBody(utf8Body)
	if err != nil {
		t.Fatalf("DecodeBody(utf8) failed: %v", err)
	}
	fromLatin, err := DecodeBody(latinBody)
	if err != nil {
		t.Fatalf("DecodeBody(windows-1252) failed: %v", err)
	}

	if fromUTF8 != fromLatin {
		t.Errorf("Expected identical text, got %q and %q", fromUTF8, fromLatin)
	}
}

func TestDecodeBodyReadsPastSniffWindow(t *testing.T) {
	// The sniffer only inspects the first kilobyte; keep it all ASCII.
	prefix := "Utgivare;Person\n" + strings.Repeat("Axfood AB;Anna\n", 100)
	body := []byte(prefix + "Axfood AB;J\u00f6rgen\n")
	if len(prefix) <= 1024 {
		t.Fatalf("Expected ASCII prefix longer than 1024 bytes, got %d", len(prefix))
	}

	text, err := DecodeBody(body)
	if err != nil {
		t.Fatalf("DecodeBody failed: %v", err)
	}
	records, _, err := ParseRecords(text)
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}

	last := records[len(records)-1]
	if got := last["Person"]; got != "J\u00f6rgen" {
		t.Errorf("Expected J\u00f6rgen, got %q", got)
	}
}

func TestDecodeBodyDropsByteOrderMark(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"utf-8", []byte("\xef\xbb\xbfA;B\n1;2\n")},
		{"utf-8 with latin text later", []byte("\xef\xbb\xbfA;B\n1;\xc3\xa5\n")},
		{"utf-16le", []byte("\xff\xfeA\x00;\x00B\x00\n\x001\x00;\x002\x00\n\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := DecodeBody(tt.body)
			if err != nil {
				t.Fatalf("DecodeBody failed: %v", err)
			}
			records, _, err := ParseRecords(text)
			if err != nil {
				t.Fatalf("ParseRecords failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(records))
			}
			if _, ok := records[0]["A"]; !ok {
				t.Errorf("Expected first column keyed as A, got %q", records[0])
			}
		})
	}
}

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used both upstream and on the inbound API.
const DateLayout = "2006-01-02"

// Record is one row of the registry export. Columns whose value was empty
// are left out, so the key set varies from row to row.
type Record map[string]string

// Date is a calendar date without time of day.
type Date time.Time

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date(t), nil
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d Date) After(other Date) bool {
	return time.Time(d).After(time.Time(other))
}

// DateRange is an inclusive from..to range of calendar dates.
type DateRange struct {
	From Date
	To   Date
}

func (r DateRange) validate(name string) error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%s range requires both from and to dates", name)
	}
	if r.From.After(r.To) {
		return fmt.Errorf("%s range starts after it ends (%s > %s)", name, r.From, r.To)
	}
	return nil
}

// RecordQuery selects the disclosures of one issuer within a publication
// and a transaction date range.
type RecordQuery struct {
	Company     string
	Publication DateRange
	Transaction DateRange
}

// NewRecordQuery builds a query that uses the same range for publication and
// transaction dates.
func NewRecordQuery(company string, from, to Date) RecordQuery {
	r := DateRange{From: from, To: to}
	return RecordQuery{Company: company, Publication: r, Transaction: r}
}

func (q RecordQuery) Validate() error {
	if strings.TrimSpace(q.Company) == "" {
		return errors.New("company is required")
	}
	if err := q.Publication.validate("publication"); err != nil {
		return err
	}
	return q.Transaction.validate("transaction")
}

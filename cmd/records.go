package cmd

import (
	"encoding/json"
	"fmt"

	"insyn-search/models"
	"insyn-search/search"

	"github.com/spf13/cobra"
)

var (
	recordsFrom      string
	recordsTo        string
	recordsPubFrom   string
	recordsPubTo     string
	recordsTransFrom string
	recordsTransTo   string
	recordsFilter    string
)

var recordsCmd = &cobra.Command{
	Use:   "records <company>",
	Short: "Print the disclosures of one issuer as JSON",
	Example: `  insyn records Axfood --from 2023-05-10 --to 2024-07-13
  insyn records Axfood --from 2023-01-01 --to 2023-12-31 --trans-from 2023-06-01 --filter Balkow`,
	Args: cobra.ExactArgs(1),
	RunE: runRecords,
}

func init() {
	f := recordsCmd.Flags()
	f.StringVar(&recordsFrom, "from", "", "Start date (YYYY-MM-DD) for both ranges")
	f.StringVar(&recordsTo, "to", "", "End date (YYYY-MM-DD) for both ranges")
	f.StringVar(&recordsPubFrom, "pub-from", "", "Publication start date, overrides --from")
	f.StringVar(&recordsPubTo, "pub-to", "", "Publication end date, overrides --to")
	f.StringVar(&recordsTransFrom, "trans-from", "", "Transaction start date, overrides --from")
	f.StringVar(&recordsTransTo, "trans-to", "", "Transaction end date, overrides --to")
	f.StringVar(&recordsFilter, "filter", "", "Only print records matching this text")
	rootCmd.AddCommand(recordsCmd)
}

type dateFlags struct {
	from      string
	to        string
	pubFrom   string
	pubTo     string
	transFrom string
	transTo   string
}

func buildRecordQuery(company string, f dateFlags) (models.RecordQuery, error) {
	q := models.RecordQuery{Company: company}

	pick := func(specific, fallback, name string, target *models.Date) error {
		raw := specific
		if raw == "" {
			raw = fallback
		}
		if raw == "" {
			return fmt.Errorf("missing %s date", name)
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			return err
		}
		*target = d
		return nil
	}

	if err := pick(f.pubFrom, f.from, "publication start", &q.Publication.From); err != nil {
		return q, err
	}
	if err := pick(f.pubTo, f.to, "publication end", &q.Publication.To); err != nil {
		return q, err
	}
	if err := pick(f.transFrom, f.from, "transaction start", &q.Transaction.From); err != nil {
		return q, err
	}
	if err := pick(f.transTo, f.to, "transaction end", &q.Transaction.To); err != nil {
		return q, err
	}
	return q, q.Validate()
}

func runRecords(cmd *cobra.Command, args []string) error {
	q, err := buildRecordQuery(args[0], dateFlags{
		from:      recordsFrom,
		to:        recordsTo,
		pubFrom:   recordsPubFrom,
		pubTo:     recordsPubTo,
		transFrom: recordsTransFrom,
		transTo:   recordsTransTo,
	})
	if err != nil {
		return err
	}

	logger, err := cliLogger(settings)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newClient(settings, logger)
	if err != nil {
		return err
	}

	records, err := client.FetchRecords(cmd.Context(), q)
	if err != nil {
		return err
	}

	if recordsFilter != "" {
		filter, err := search.NewFilter(settings.RecordFilter)
		if err != nil {
			return err
		}
		if records, err = filter.Filter(records, recordsFilter); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

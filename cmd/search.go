package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search <keyword>",
	Short:   "Print the registry's issuer autocomplete result as JSON",
	Example: "  insyn search Axfood",
	Args:    cobra.ExactArgs(1),
	RunE:    runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger, err := cliLogger(settings)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newClient(settings, logger)
	if err != nil {
		return err
	}

	result, err := client.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, result, "", "  "); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return err
}

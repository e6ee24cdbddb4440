package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/backend"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show document information",
	Long: `Validate a PDF and print its basic properties without running
extraction.

Examples:
  invoice-extractor info factura.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	valid := true
	var validationErr string
	if err := backend.ValidatePDF(path); err != nil {
		valid = false
		validationErr = err.Error()
	}

	pageCount := 0
	if valid {
		if n, err := backend.PDFPageCount(path); err == nil {
			pageCount = n
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", path)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", stat.Size())
	fmt.Fprintf(tw, "Valid:\t%t\n", valid)
	if validationErr != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", validationErr)
	}
	if pageCount > 0 {
		fmt.Fprintf(tw, "Pages:\t%d\n", pageCount)
	}
	return tw.Flush()
}

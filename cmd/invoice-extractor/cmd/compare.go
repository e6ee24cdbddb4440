package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/model"
)

var (
	compareSupplier1 string
	compareSupplier2 string
	compareTimeout   time.Duration
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two invoice documents",
	Long: `Extract both documents and diff them item by item and total by
total. Useful for checking a delivery note against the original order.

Items match by product code, or by name containment in either direction.

Examples:
  invoice-extractor compare pedido.pdf albaran.pdf
  invoice-extractor compare a.pdf b.pdf --supplier1 ACL --supplier2 ACL`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareSupplier1, "supplier1", "", "Supplier provider for the first document")
	compareCmd.Flags().StringVar(&compareSupplier2, "supplier2", "", "Supplier provider for the second document")
	compareCmd.Flags().DurationVar(&compareTimeout, "timeout", 2*time.Minute, "Extraction timeout per document")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ext := buildExtractor(newLogger())
	defer ext.Cleanup(true)

	extract := func(file, supplier string) (*model.ExtractionResult, error) {
		ctx, cancel := context.WithTimeout(context.Background(), compareTimeout)
		defer cancel()
		return ext.ExtractInvoiceData(ctx, model.DocumentRef(file), supplier)
	}

	r1, err := extract(args[0], compareSupplier1)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", args[0], err)
	}
	r2, err := extract(args[1], compareSupplier2)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", args[1], err)
	}

	comparison := ext.Compare(r1.ProcessedData, r2.ProcessedData)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(comparison)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-extractor/internal/model"
)

var detectTimeout time.Duration

var detectCmd = &cobra.Command{
	Use:   "detect [files...]",
	Short: "Detect the supplier provider for documents",
	Long: `Detect which supplier provider would handle each document, based on
its native text. Documents no provider claims report GENERIC.

Examples:
  invoice-extractor detect factura.pdf
  invoice-extractor detect facturas/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().DurationVar(&detectTimeout, "timeout", 30*time.Second, "Detection timeout per file")
}

func runDetect(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	ext := buildExtractor(newLogger())
	for _, file := range files {
		ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
		key := ext.DetectProvider(ctx, model.DocumentRef(file))
		cancel()
		fmt.Printf("%s\t%s\n", file, key)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the registered supplier providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ext := buildExtractor(newLogger())
		for _, key := range ext.Providers() {
			if key == ext.Fallback() {
				fmt.Printf("%s (fallback)\n", key)
				continue
			}
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/scholarank/internal/pdfmeta"
)

func init() {
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf <file.pdf>",
	Short: "Extract DOI and title from a paper PDF",
	Long: `Extract the DOI and title from a paper PDF so it can be recorded
alongside parsed citations.

Examples:
  scholarank pdf paper.pdf
  scholarank pdf --human paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

func runPDF(cmd *cobra.Command, args []string) error {
	rec, err := pdfmeta.Record(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading pdf: %v", err)
	}

	if humanOutput {
		fmt.Printf("Title: %s\n", rec.Title)
		if rec.DOI != "" {
			fmt.Printf("DOI:   %s\n", rec.DOI)
		} else {
			fmt.Println("DOI:   (none found)")
		}
		return nil
	}
	return outputJSON(rec)
}

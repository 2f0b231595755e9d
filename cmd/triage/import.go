package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mixelka/emailtriage/internal/ingest"
	"github.com/mixelka/emailtriage/internal/parser"
	"github.com/mixelka/emailtriage/internal/triage"
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import .eml messages",
	Long:  `Import RFC 5322 messages. Directories are walked for .eml files. Messages already in the store are skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample mailbox",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	paths, err := collectMailFiles(args)
	if err != nil {
		return err
	}

	importer := ingest.NewImporter(cfg.OwnerAddress, parser.NewHTMLParser(parser.WithQuotesStripped()), logger)
	msgs, unreadable := importer.ImportFiles(paths)

	svc, st, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := svc.Ingest(cmd.Context(), msgs)
	if err != nil {
		return err
	}

	return printIngest(result, unreadable)
}

func runSeed(cmd *cobra.Command, args []string) error {
	svc, st, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := svc.Ingest(cmd.Context(), ingest.SampleMailbox(cfg.OwnerAddress, time.Now()))
	if err != nil {
		return err
	}

	return printIngest(result, 0)
}

// collectMailFiles expands directories into the .eml files below them
func collectMailFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && ingest.IsMailFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

func printIngest(result triage.IngestResult, unreadable int) error {
	if jsonOutput {
		return printJSON(map[string]int{
			"inserted":   result.Inserted,
			"skipped":    result.Skipped,
			"unreadable": unreadable,
		})
	}

	fmt.Printf("Inserted %d, skipped %d existing", result.Inserted, result.Skipped)
	if unreadable > 0 {
		fmt.Printf(", %d unreadable", unreadable)
	}
	fmt.Println()
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aweris/bitcache"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the index against the stored binaries",
	Long: "Verifies that every metadata entry's binary exists in the repository tree.\n" +
		"Inconsistencies are reported, never repaired.",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	report, err := bitcache.Verify(cmd.Context(), store, workflowOptions()...)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if report.OK() {
		fmt.Fprintf(os.Stderr, "OK: %d entries, all binaries present\n", report.Checked)
		return nil
	}

	for _, entry := range report.Missing {
		fmt.Printf("missing\t%s\t%s\n", entry.MD5, entry.BinaryPath)
	}
	return fmt.Errorf("%d of %d entries missing their binary", len(report.Missing), report.Checked)
}

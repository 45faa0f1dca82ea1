package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aweris/bitcache"
)

var getCmd = &cobra.Command{
	Use:   "get <md5>",
	Short: "Retrieve a bitstream by source MD5",
	Long:  "Looks up the digest in the metadata index and copies the bitstream into the current directory.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	digest := bitcache.Digest(args[0])
	fmt.Fprintf(os.Stderr, "Retrieving bitstream for MD5 %s...\n", digest)

	res, err := bitcache.Get(cmd.Context(), store, bitcache.GetRequest{Digest: digest}, workflowOptions()...)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Source file: %s\n", res.Entry.SourceFile)
	fmt.Fprintf(os.Stderr, "Published:   %s\n", res.Entry.Timestamp)
	fmt.Fprintf(os.Stderr, "Saved to:    %s\n", res.Path)
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published artifacts",
	Long:  "Prints every metadata entry in the store, one artifact per line.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) (err error) {
	store, err := newStore()
	if err != nil {
		return err
	}

	sess, err := store.Acquire(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if rerr := sess.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	meta := sess.Metadata()
	for digest, entry := range meta.All() {
		fmt.Printf("%s\t%s\t%s\t%s\n", digest, entry.BinaryPath, entry.SourceFile, entry.Timestamp)
	}

	if meta.Len() == 0 {
		fmt.Println("(no entries)")
	}
	return nil
}

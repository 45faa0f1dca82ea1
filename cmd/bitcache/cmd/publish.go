package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/bitcache"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a bitstream to the store",
	Long: "Computes the MD5 of the source file, stores the bitstream in the repository\n" +
		"under the target path, and records the mapping in the metadata index.",
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("source", "", "source file whose MD5 keys the artifact")
	publishCmd.Flags().String("bitstream", "", "binary file to publish")
	publishCmd.Flags().String("path", "", "target directory inside the repository")
	publishCmd.Flags().Bool("compress", false, "store the bitstream zstd-compressed")

	publishCmd.MarkFlagRequired("source")
	publishCmd.MarkFlagRequired("bitstream")
	publishCmd.MarkFlagRequired("path")
}

func runPublish(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	bitstream, _ := cmd.Flags().GetString("bitstream")
	target, _ := cmd.Flags().GetString("path")
	compress, _ := cmd.Flags().GetBool("compress")

	opts := workflowOptions()
	if compress {
		opts = append(opts, bitcache.WithCompression(viper.GetInt("compression_level")))
	}

	fmt.Fprintf(os.Stderr, "Publishing %s...\n", bitstream)

	res, err := bitcache.Publish(cmd.Context(), store, bitcache.PublishRequest{
		SourcePath:    source,
		BitstreamPath: bitstream,
		TargetDir:     target,
	}, opts...)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Done. Stored %s (attempt %d)\n", res.Entry.BinaryPath, res.Attempts)
	fmt.Println(res.Digest)
	return nil
}

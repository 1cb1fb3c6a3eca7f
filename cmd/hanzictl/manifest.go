package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vytor/hanziflash/internal/audio"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Index an audio tree into a YAML bundle index for AUDIO_INDEX",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		out, _ := cmd.Flags().GetString("out")
		strict, _ := cmd.Flags().GetBool("strict")

		res, err := audio.ScanBundle(os.DirFS(root))
		if err != nil {
			return fmt.Errorf("scan %s: %w", root, err)
		}
		if abs, err := filepath.Abs(root); err == nil {
			res.Index.Root = abs
		}

		stderr := cmd.ErrOrStderr()
		for _, name := range res.Rejected {
			fmt.Fprintf(stderr, "skipped %s\n", name)
		}
		if strict && len(res.Rejected) > 0 {
			return fmt.Errorf("%d files do not follow the clip naming convention", len(res.Rejected))
		}

		var w io.Writer = cmd.OutOrStdout()
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		if err := res.Index.Write(w); err != nil {
			return fmt.Errorf("write index: %w", err)
		}

		fmt.Fprintf(stderr, "indexed %d clips, skipped %d files\n", len(res.Index.Clips), len(res.Rejected))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)

	manifestCmd.Flags().String("root", "assets/audio", "audio tree laid out as HSK<level>/batch<NN>/<key>.mp3")
	manifestCmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	manifestCmd.Flags().Bool("strict", false, "fail when any file is skipped")
}

package cmd

import (
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/stream"
)

func init() {
	convertCmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Round-trip a container between the binary (format 001) and text (format 000) encodings",
		Long: `convert reads <in>, auto-detecting format 001 (binary) vs format 000
(text) by its leading bytes, and writes <out> in the format named by its
extension: text for ".txt" or ".out", binary for anything else. The input
format plays no part in that choice.`,
		Args: cobra.ExactArgs(2),
		RunE: runConvert,
	}
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	codes, b, err := readContainer(in)
	if err != nil {
		return err
	}

	if wantsText(out) {
		return stream.WriteText(fs, out, b, codes)
	}
	w, err := stream.NewWriter(fs, out, b)
	if err != nil {
		return err
	}
	for _, c := range codes {
		if err := w.Append(c); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// readContainer auto-detects the source container's format by its leading
// bytes and reads it fully.
func readContainer(path string) ([]*big.Int, base.Base, error) {
	isText, err := isTextContainer(path)
	if err != nil {
		return nil, base.Base{}, err
	}
	if isText {
		return stream.ReadText(fs, path)
	}
	return stream.ReadAll(fs, path)
}

func isTextContainer(path string) (bool, error) {
	f, err := fs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 9)
	n, _ := f.Read(head)
	head = head[:n]
	// Binary containers carry the format byte 0x01 immediately after the
	// 8-byte magic; text containers null-terminate the magic and start a
	// new line instead.
	return !(len(head) == 9 && head[8] == 0x01), nil
}

func wantsText(path string) bool {
	return strings.HasSuffix(path, ".txt") || strings.HasSuffix(path, ".out")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybkr/tectonic/internal/codec"
	"github.com/rybkr/tectonic/internal/colour"
	"github.com/rybkr/tectonic/internal/region"
	"github.com/rybkr/tectonic/internal/stream"
)

var verifyColour bool

func init() {
	verifyCmd := &cobra.Command{
		Use:   "verify <container>",
		Short: "Decode every code in a container and check it for anomalous regions",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
	verifyCmd.Flags().BoolVar(&verifyColour, "colour", false, "also check each grid's region graph for a 4-colouring")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := args[0]
	r, err := stream.NewReader(fs, path)
	if err != nil {
		return err
	}
	defer r.Close()

	var total, anomalous, fourColourable int
	for {
		code, ok, err := r.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		total++

		g, err := codec.Decode(code)
		if err != nil {
			return fmt.Errorf("tectonic: code %d: %w", total, err)
		}
		summary := region.Analyze(g)
		if summary.AnyAnomalous() {
			anomalous++
			continue
		}
		if verifyColour && colour.FourColourable(g) {
			fourColourable++
		}
	}

	fmt.Printf("base: %s\n", r.Base)
	fmt.Printf("codes: %d (header declared %d)\n", total, r.Total)
	fmt.Printf("anomalous: %d\n", anomalous)
	if verifyColour {
		fmt.Printf("four-colourable: %d/%d\n", fourColourable, total-anomalous)
	}
	if anomalous > 0 {
		return fmt.Errorf("tectonic: %d anomalous grid(s) found", anomalous)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/progress"
)

var (
	resH int
	resW int
	resM int
)

func init() {
	resumeCmd := &cobra.Command{
		Use:   "resume <data-dir>",
		Short: "Report the best eligible progress file in <data-dir> for a target base",
		Long: `resume scans <data-dir> for saved progress files, reports the best
eligible one for the target base (height/width/maximum), and
prints the command that would continue generation from it. It never
mutates <data-dir> itself; run "generate" against the same directory to
actually continue the search.`,
		Args: cobra.ExactArgs(1),
		RunE: runResume,
	}
	resumeCmd.Flags().IntVarP(&resH, "height", "h", 0, "target grid height")
	resumeCmd.Flags().IntVarP(&resW, "width", "l", 0, "target grid width")
	resumeCmd.Flags().IntVarP(&resM, "maximum", "m", 0, "target maximum cell value")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	dataDir := args[0]

	h, w, m := resH, resW, resM
	if h == 0 {
		h = cliOpts.DefaultH
	}
	if w == 0 {
		w = cliOpts.DefaultW
	}
	if m == 0 {
		m = cliOpts.DefaultM
	}
	if _, err := base.New(h, w, m); err != nil {
		return err
	}

	candidates, err := progress.Scan(fs, dataDir)
	if err != nil {
		return err
	}
	best, ok := progress.Best(candidates, h, w, m)
	if !ok {
		fmt.Printf("no eligible progress file in %s for base %dx%dx%d\n", dataDir, h, w, m)
		return nil
	}

	fmt.Printf("best match: %s (stage %d, base %dx%dx%d)\n", best.Path, best.Progress.StageValue(), best.Progress.H, best.Progress.W, best.Progress.M)
	fmt.Printf("continue with: tectonic generate -h %d -l %d -m %d %s\n", h, w, m, dataDir)
	return nil
}

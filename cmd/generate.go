package cmd

import (
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rybkr/tectonic/internal/base"
	"github.com/rybkr/tectonic/internal/logging"
	"github.com/rybkr/tectonic/internal/progress"
	"github.com/rybkr/tectonic/internal/progressui"
	"github.com/rybkr/tectonic/internal/search"
	"github.com/rybkr/tectonic/internal/stream"
)

var (
	genH       int
	genW       int
	genM       int
	genSingle  bool
	genStrict  bool
	genMaxStg  int
	genBreadth bool
)

func init() {
	genCmd := &cobra.Command{
		Use:   "generate <data-dir>",
		Short: "Run the staged enumerator, writing validated grids to <data-dir>",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}

	genCmd.Flags().IntVarP(&genH, "height", "h", 0, "target grid height")
	genCmd.Flags().IntVarP(&genW, "width", "l", 0, "target grid width")
	genCmd.Flags().IntVarP(&genM, "maximum", "m", 0, "target maximum cell value")
	genCmd.Flags().BoolVarP(&genSingle, "single-stage", "q", false, "write only the current stage's frontier, not intermediate stages")
	genCmd.Flags().BoolVar(&genStrict, "strict", false, "only resume from a progress file with an exact base match")
	genCmd.Flags().IntVarP(&genMaxStg, "max-stage", "s", 0, "stop after this many stages (0 = run to completion)")
	genCmd.Flags().BoolVar(&genBreadth, "breadth", false, "use the breadth-first variant instead of the depth-first driver: materialises every stage frontier fully, for small bases only, with no checkpoint/resume support")

	rootCmd.AddCommand(genCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dataDir := args[0]

	h, w, m := genH, genW, genM
	if h == 0 {
		h = cliOpts.DefaultH
	}
	if w == 0 {
		w = cliOpts.DefaultW
	}
	if m == 0 {
		m = cliOpts.DefaultM
	}

	b, err := base.New(h, w, m)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("tectonic: create data dir: %w", err)
	}

	if genBreadth {
		return runGenerateBreadth(dataDir, b)
	}

	startDepth := 0
	var d *search.Driver
	termPath := fmt.Sprintf("%s/%s.tect", dataDir, progress.Progress{H: h, W: w, M: m, Stage: -1}.Stem())

	if !genStrict {
		startDepth, d, err = resumeFromBest(dataDir, b, termPath)
		if err != nil {
			return err
		}
	}
	if d == nil {
		w2, err := stream.NewWriter(fs, termPath, b)
		if err != nil {
			return err
		}
		d = search.NewDriver(b, fs, w2, log)
		d.Seed()
	}

	d.MaxDepth = genMaxStg

	switch {
	case !genSingle:
		for k := 0; k < b.N(); k++ {
			stagePath := fmt.Sprintf("%s/%s.tect", dataDir, progress.Progress{H: h, W: w, M: m, Stage: k}.Stem())
			sw, err := stream.NewWriter(fs, stagePath, b)
			if err != nil {
				return err
			}
			d.StageWriters[k] = sw
		}
	case genMaxStg > 0:
		stagePath := fmt.Sprintf("%s/%s.tect", dataDir, progress.Progress{H: h, W: w, M: m, Stage: genMaxStg}.Stem())
		sw, err := stream.NewWriter(fs, stagePath, b)
		if err != nil {
			return err
		}
		d.StageWriters[genMaxStg] = sw
	}

	ckptPath := fmt.Sprintf("%s/%s.prg", dataDir, progress.Progress{H: h, W: w, M: m, Stage: -1}.Stem())
	d.CheckpointPath = ckptPath

	stop := search.WatchSignals(d.Cancel)
	defer stop()

	sp := progressui.New(fmt.Sprintf("enumerating %s", b), cliOpts.Quiet || !logging.IsTerminal(os.Stdout))
	sp.Start()
	defer sp.Stop()

	completed, err := d.Run(startDepth)

	for _, w := range d.StageWriters {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if cerr := d.TerminalWriter.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if completed {
		log.Info().Int("terminal_count", d.TerminalCount()).Msg("generation complete")
		if err := fs.Remove(ckptPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("could not remove checkpoint after clean completion")
		}
	} else {
		log.Info().Int("terminal_count", d.TerminalCount()).Str("checkpoint", ckptPath).Msg("interrupted; checkpoint written")
	}
	return nil
}

// runGenerateBreadth drives search.RunBreadthFirst instead of the
// depth-first Driver: it materialises every stage frontier fully under
// dataDir before advancing, so it offers no cooperative cancellation or
// checkpoint/resume (spec §4.5) and is only suitable for small bases.
func runGenerateBreadth(dataDir string, b base.Base) error {
	termPath := fmt.Sprintf("%s/%s.tect", dataDir, progress.Progress{H: int(b.H), W: int(b.W), M: int(b.M), Stage: -1}.Stem())
	w, err := stream.NewWriter(fs, termPath, b)
	if err != nil {
		return err
	}

	count, runErr := search.RunBreadthFirst(b, fs, dataDir, w)
	if cerr := w.Close(); cerr != nil && runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return runErr
	}

	log.Info().Int("terminal_count", count).Msg("breadth-first generation complete")
	return nil
}

// resumeFromBest scans dataDir for the best eligible progress file and, if
// one exists, restores the driver from its checkpoint (if any) or starts a
// fresh depth-first run seeded with its migrated codes.
func resumeFromBest(dataDir string, b base.Base, termPath string) (int, *search.Driver, error) {
	candidates, err := progress.Scan(fs, dataDir)
	if err != nil {
		return 0, nil, err
	}
	best, ok := progress.Best(candidates, int(b.H), int(b.W), int(b.M))
	if !ok {
		return 0, nil, nil
	}

	ckptStem := progress.Progress{H: best.Progress.H, W: best.Progress.W, M: best.Progress.M, Stage: -1}.Stem()
	ckptPath := fmt.Sprintf("%s/%s.prg", dataDir, ckptStem)
	if ok, _ := afero.Exists(fs, ckptPath); ok {
		indices, err := progress.ReadCheckpoint(fs, ckptPath)
		if err != nil {
			return 0, nil, err
		}

		// termPath is the same file the interrupted run already validated
		// and closed; read its terminal codes back out before NewWriter
		// truncates it, so resuming doesn't lose them.
		var priorCodes []*big.Int
		if ok, _ := afero.Exists(fs, termPath); ok {
			priorCodes, _, err = stream.ReadAll(fs, termPath)
			if err != nil {
				return 0, nil, err
			}
		}

		w, err := stream.NewWriter(fs, termPath, b)
		if err != nil {
			return 0, nil, err
		}
		for _, c := range priorCodes {
			if err := w.Append(c); err != nil {
				return 0, nil, err
			}
		}
		d := search.NewDriver(b, fs, w, log)
		startDepth, err := d.Resume(indices)
		if err != nil {
			log.Warn().Err(err).Msg("checkpoint invalid, starting fresh")
			d.Seed()
			return 0, d, nil
		}
		return startDepth, d, nil
	}

	migrated, err := progress.Migrate(fs, best.Path, int(b.H), int(b.W), int(b.M))
	if err != nil {
		return 0, nil, err
	}
	if len(migrated) == 0 {
		return 0, nil, nil
	}
	w, err := stream.NewWriter(fs, termPath, b)
	if err != nil {
		return 0, nil, err
	}
	d := search.NewDriver(b, fs, w, log)
	depth := best.Progress.StageValue()
	if depth > b.N() {
		depth = b.N()
	}
	startDepth := d.SeedFrontier(depth, migrated)
	log.Info().Str("source", best.Path).Int("stage", startDepth).Int("codes", len(migrated)).Msg("resuming from migrated frontier")
	return startDepth, d, nil
}

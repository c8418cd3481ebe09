package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/speechkit/cutset/pkg/cutset"
	"github.com/speechkit/cutset/pkg/cutset/features"
)

var (
	showCuts string
	showID   string
	showLoad bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List cuts in a manifest, optionally materializing their features",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showCuts, "cuts", "", "cut manifest (YAML)")
	showCmd.Flags().StringVar(&showID, "id", "", "show only this cut")
	showCmd.Flags().BoolVar(&showLoad, "load", false, "materialize features and report their statistics")
	_ = showCmd.MarkFlagRequired("cuts")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	set, err := cutset.FromYAML(showCuts)
	if err != nil {
		return err
	}
	set.BindMixes(set)

	cuts := set.Cuts()
	if showID != "" {
		c, ok := set.Get(showID)
		if !ok {
			return fmt.Errorf("cut %s not found in %s", showID, showCuts)
		}
		cuts = []cutset.Cut{c}
	}

	for _, c := range cuts {
		if err := showCut(cmd, c); err != nil {
			return err
		}
	}
	log.Debugf("showed %d cuts from %s", len(cuts), showCuts)
	return nil
}

func showCut(cmd *cobra.Command, c cutset.Cut) error {
	kind := "segment"
	if _, ok := c.(*cutset.Mix); ok {
		kind = "mix"
	}
	dur, err := c.CutDuration()
	if err != nil {
		return err
	}
	sups, err := c.CutSupervisions()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s  %7.2fs  %d supervisions\n", c.CutID(), kind, dur, len(sups))

	if !showLoad {
		return nil
	}
	rows, err := c.LoadFeatures(rootDir)
	if err != nil {
		return err
	}
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	flat := make([]float64, 0, len(rows)*width)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "    %d x %d frames, %s, mean %.3f, stddev %.3f\n",
		len(rows), width, humanize.Bytes(uint64(features.MatrixBytes(rows))),
		stat.Mean(flat, nil), stat.StdDev(flat, nil))
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speechkit/cutset/pkg/cutset"
	"github.com/speechkit/cutset/pkg/cutset/features"
	"github.com/speechkit/cutset/pkg/cutset/supervision"
)

var (
	makeCutsSupervisions string
	makeCutsFeatures     string
	makeCutsDBPath       string
	makeCutsOut          string
)

var makeCutsCmd = &cobra.Command{
	Use:   "make-cuts",
	Short: "Build one cut per supervision from a feature lookup",
	RunE:  runMakeCuts,
}

func init() {
	makeCutsCmd.Flags().StringVar(&makeCutsSupervisions, "supervisions", "", "supervision manifest (YAML)")
	makeCutsCmd.Flags().StringVar(&makeCutsFeatures, "features", "", "feature manifest (YAML)")
	makeCutsCmd.Flags().StringVar(&makeCutsDBPath, "db", "", "SQLite feature index")
	makeCutsCmd.Flags().StringVar(&makeCutsOut, "out", "", "cut manifest to write")
	_ = makeCutsCmd.MarkFlagRequired("supervisions")
	_ = makeCutsCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(makeCutsCmd)
}

func runMakeCuts(cmd *cobra.Command, args []string) error {
	sups, err := supervision.FromYAML(makeCutsSupervisions)
	if err != nil {
		return err
	}

	var lookup features.Lookup
	switch {
	case makeCutsFeatures != "" && makeCutsDBPath != "":
		return fmt.Errorf("use either --features or --db, not both")
	case makeCutsFeatures != "":
		manifest, err := features.FromYAML(makeCutsFeatures)
		if err != nil {
			return err
		}
		lookup = manifest
	case makeCutsDBPath != "":
		index, err := features.OpenIndex(makeCutsDBPath)
		if err != nil {
			return err
		}
		defer index.Close()
		lookup = index
	default:
		return fmt.Errorf("either --features or --db is required")
	}

	set, err := cutset.FromSupervisions(sups.Segments, lookup)
	if err != nil {
		return err
	}
	if err := set.ToYAML(makeCutsOut); err != nil {
		return err
	}
	log.Infof("built %d cuts from %d supervisions, wrote %s", set.Len(), sups.Len(), makeCutsOut)
	return nil
}

var (
	truncateCuts          string
	truncateID            string
	truncateOffset        float64
	truncateUntil         float64
	truncateKeepExcessive bool
	truncateOut           string
)

var truncateCmd = &cobra.Command{
	Use:   "truncate",
	Short: "Truncate one segment cut and append the result to the set",
	RunE:  runTruncate,
}

func init() {
	truncateCmd.Flags().StringVar(&truncateCuts, "cuts", "", "cut manifest (YAML)")
	truncateCmd.Flags().StringVar(&truncateID, "id", "", "id of the segment to truncate")
	truncateCmd.Flags().Float64Var(&truncateOffset, "offset", 0, "seconds to drop from the start")
	truncateCmd.Flags().Float64Var(&truncateUntil, "until", 0, "window end relative to the original start")
	truncateCmd.Flags().BoolVar(&truncateKeepExcessive, "keep-excessive", true, "keep supervisions that merely overlap the window")
	truncateCmd.Flags().StringVar(&truncateOut, "out", "", "cut manifest to write")
	_ = truncateCmd.MarkFlagRequired("cuts")
	_ = truncateCmd.MarkFlagRequired("id")
	_ = truncateCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(truncateCmd)
}

func runTruncate(cmd *cobra.Command, args []string) error {
	set, err := cutset.FromYAML(truncateCuts)
	if err != nil {
		return err
	}
	c, ok := set.Get(truncateID)
	if !ok {
		return fmt.Errorf("cut %s not found in %s", truncateID, truncateCuts)
	}
	seg, ok := c.(*cutset.Segment)
	if !ok {
		return fmt.Errorf("cut %s is a mix; only segments can be truncated", truncateID)
	}

	opts := []cutset.TruncateOption{
		cutset.WithOffset(truncateOffset),
		cutset.WithKeepExcessiveSupervisions(truncateKeepExcessive),
	}
	if cmd.Flags().Changed("until") {
		opts = append(opts, cutset.WithUntil(truncateUntil))
	}
	truncated, err := seg.Truncate(opts...)
	if err != nil {
		return err
	}

	set.Add(truncated)
	if err := set.ToYAML(truncateOut); err != nil {
		return err
	}
	log.Infof("truncated %s into %s [%.2fs, %.2fs), wrote %d cuts to %s",
		seg.ID, truncated.ID, truncated.Start, truncated.End(), set.Len(), truncateOut)
	return nil
}

var (
	mixCuts    string
	mixLeftID  string
	mixRightID string
	mixOffset  float64
	mixSNR     float64
	mixOut     string
)

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Overlay two cuts and append the mix to the set",
	RunE:  runMix,
}

func init() {
	mixCmd.Flags().StringVar(&mixCuts, "cuts", "", "cut manifest (YAML)")
	mixCmd.Flags().StringVar(&mixLeftID, "left", "", "id of the left cut")
	mixCmd.Flags().StringVar(&mixRightID, "right", "", "id of the cut mixed in")
	mixCmd.Flags().Float64Var(&mixOffset, "offset", 0, "seconds the right cut is shifted forward")
	mixCmd.Flags().Float64Var(&mixSNR, "snr", 0, "signal-to-noise ratio in dB applied to the right cut")
	mixCmd.Flags().StringVar(&mixOut, "out", "", "cut manifest to write")
	_ = mixCmd.MarkFlagRequired("cuts")
	_ = mixCmd.MarkFlagRequired("left")
	_ = mixCmd.MarkFlagRequired("right")
	_ = mixCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(mixCmd)
}

func runMix(cmd *cobra.Command, args []string) error {
	set, err := cutset.FromYAML(mixCuts)
	if err != nil {
		return err
	}
	left, ok := set.Get(mixLeftID)
	if !ok {
		return fmt.Errorf("cut %s not found in %s", mixLeftID, mixCuts)
	}
	right, ok := set.Get(mixRightID)
	if !ok {
		return fmt.Errorf("cut %s not found in %s", mixRightID, mixCuts)
	}

	m := left.Overlay(right, mixOffset, mixSNR)
	set.Add(m)
	if err := set.ToYAML(mixOut); err != nil {
		return err
	}
	log.Infof("mixed %s with %s at offset %.2fs snr %.1f dB into %s, wrote %d cuts to %s",
		mixLeftID, mixRightID, mixOffset, mixSNR, m.ID, set.Len(), mixOut)
	return nil
}

var (
	downmixCuts string
	downmixOut  string
)

var downmixCmd = &cobra.Command{
	Use:   "downmix",
	Short: "Overlay stereo channel pairs into mono mixes",
	Long: `downmix pairs the set's channel 0 cuts with its channel 1 cuts in
order and overlays each pair at offset 0 with SNR 0. The output
manifest contains the input cuts plus the new mixes, so it resolves
on its own.`,
	RunE: runDownmix,
}

func init() {
	downmixCmd.Flags().StringVar(&downmixCuts, "cuts", "", "cut manifest (YAML)")
	downmixCmd.Flags().StringVar(&downmixOut, "out", "", "cut manifest to write")
	_ = downmixCmd.MarkFlagRequired("cuts")
	_ = downmixCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(downmixCmd)
}

func runDownmix(cmd *cobra.Command, args []string) error {
	set, err := cutset.FromYAML(downmixCuts)
	if err != nil {
		return err
	}
	mixes, err := cutset.DownmixStereo(set)
	if err != nil {
		return err
	}

	merged := set.Union(mixes)
	if err := merged.ToYAML(downmixOut); err != nil {
		return err
	}
	log.Infof("downmixed %d stereo pairs, wrote %d cuts to %s", mixes.Len(), merged.Len(), downmixOut)
	return nil
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/speechkit/cutset/pkg/cutset/audio"
	"github.com/speechkit/cutset/pkg/cutset/features"
)

var (
	extractAudioDir    string
	extractOutDir      string
	extractFrameLength float64
	extractFrameShift  float64
	extractNumMels     int
	extractDBPath      string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract filterbank features from a directory of WAV recordings",
	Long: `extract scans --audio-dir recursively for WAV files, computes mel
filterbank energies per recording and channel, stores each matrix
under --out-dir/feats and writes a features.yml manifest next to
them. With --db the same entries also go into a SQLite index.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractAudioDir, "audio-dir", "", "directory scanned recursively for WAV files")
	extractCmd.Flags().StringVar(&extractOutDir, "out-dir", "", "output directory for matrices and the manifest")
	extractCmd.Flags().Float64Var(&extractFrameLength, "frame-length", 0.025, "analysis window in seconds")
	extractCmd.Flags().Float64Var(&extractFrameShift, "frame-shift", 0.01, "hop between frames in seconds")
	extractCmd.Flags().IntVar(&extractNumMels, "num-mels", 40, "number of mel filters")
	extractCmd.Flags().StringVar(&extractDBPath, "db", "", "optional SQLite feature index to populate")
	_ = extractCmd.MarkFlagRequired("audio-dir")
	_ = extractCmd.MarkFlagRequired("out-dir")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	recordings, err := audio.Scan(extractAudioDir)
	if err != nil {
		return err
	}
	if recordings.Len() == 0 {
		return fmt.Errorf("no WAV files under %s", extractAudioDir)
	}
	log.Infof("extracting features for %d recordings from %s", recordings.Len(), extractAudioDir)

	var index *features.Index
	if extractDBPath != "" {
		index, err = features.OpenIndex(extractDBPath)
		if err != nil {
			return err
		}
		defer index.Close()
	}

	progress := mpb.New(mpb.WithWidth(40))
	bar := progress.AddBar(int64(recordings.Len()),
		mpb.PrependDecorators(
			decor.Name("extract "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	manifest := &features.Set{}
	totalFrames := 0
	totalBytes := 0
	for _, rec := range recordings.Recordings {
		extractor, err := features.NewExtractor(
			features.WithSampleRate(rec.SampleRate),
			features.WithFrameLength(extractFrameLength),
			features.WithFrameShift(extractFrameShift),
			features.WithNumMels(extractNumMels),
		)
		if err != nil {
			return err
		}
		for ch := 0; ch < rec.NumChannels; ch++ {
			samples, err := rec.Samples(ch)
			if err != nil {
				return err
			}
			matrix, err := extractor.Extract(samples)
			if err != nil {
				return fmt.Errorf("extracting %s channel %d: %w", rec.ID, ch, err)
			}
			rel := filepath.Join("feats", fmt.Sprintf("%s_ch%d.gob", rec.ID, ch))
			if err := features.WriteMatrix(filepath.Join(extractOutDir, rel), matrix); err != nil {
				return err
			}
			entry := extractor.FeaturesFor(rec.ID, ch, rec.Duration, len(matrix), rel)
			manifest.Add(entry)
			if index != nil {
				if err := index.Put(entry); err != nil {
					return err
				}
			}
			totalFrames += len(matrix)
			totalBytes += features.MatrixBytes(matrix)
			log.Debugf("extracted %s channel %d: %d frames", rec.ID, ch, len(matrix))
		}
		bar.Increment()
	}
	progress.Wait()

	manifestPath := filepath.Join(extractOutDir, "features.yml")
	if err := manifest.ToYAML(manifestPath); err != nil {
		return err
	}
	log.Infof("wrote %d matrices, %d frames, %s to %s",
		manifest.Len(), totalFrames, humanize.Bytes(uint64(totalBytes)), extractOutDir)
	return nil
}

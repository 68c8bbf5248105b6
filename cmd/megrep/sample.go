package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"megrep/pkg/sampler"
	"megrep/pkg/ui"
)

var (
	// Sample command flags
	samplePercent   float64
	sampleMinKB     int64
	sampleMaxKB     int64
	samplePerDir    int
	sampleMove      bool
	sampleSeed      uint64
	sampleOutputDir string
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample [analyze|random|size|directory]",
	Short: "Analyze the corpus or copy a subset for a trial run",
	Long: `Analyze the content directory, or select a subset of it and copy it into the
sample directory (contents_sample/ by default), keeping relative paths.

Methods:
  analyze     report counts and sizes only (default)
  random      a random percentage of all files
  size        files between --min-kb and --max-kb
  directory   at most --per-dir random files from every directory

To trial the sample, swap it in for the content directory, for example:
  mv contents contents_original && mv contents_sample contents`,
	Example: `  # Corpus statistics
  megrep sample

  # Copy a random 1% of all files
  megrep sample random --percent 1

  # Files between 50KB and 2MB
  megrep sample size --min-kb 50 --max-kb 2048

  # At most 10 files per directory, moved instead of copied
  megrep sample directory --per-dir 10 --move`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"analyze", "random", "size", "directory"},
	RunE:      runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().Float64Var(&samplePercent, "percent", 10, "percentage of files for random sampling")
	sampleCmd.Flags().Int64Var(&sampleMinKB, "min-kb", 50, "minimum file size in KB for size sampling")
	sampleCmd.Flags().Int64Var(&sampleMaxKB, "max-kb", 5000, "maximum file size in KB for size sampling")
	sampleCmd.Flags().IntVar(&samplePerDir, "per-dir", 50, "maximum files per directory for directory sampling")
	sampleCmd.Flags().BoolVar(&sampleMove, "move", false, "move files instead of copying them")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0, "random seed for reproducible samples (default: time based)")
	sampleCmd.Flags().StringVarP(&sampleOutputDir, "output", "o", "", "sample directory (default from config)")
}

func runSample(cmd *cobra.Command, args []string) error {
	method := "analyze"
	if len(args) == 1 {
		method = args[0]
	}

	a, cleanup, err := newApp(cmd, nil, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	files, err := a.scanner.Scan(ctx, a.resolver.ContentsDir())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ui.PrintWarning("No images found in the content directory")
		return nil
	}

	s := sampler.New(a.resolver, a.log)
	if cmd.Flags().Changed("seed") {
		s = sampler.NewWithSeed(a.resolver, a.log, sampleSeed)
	}

	analysis, err := s.Analyze(ctx, files)
	if err != nil {
		return err
	}
	printAnalysis(analysis)

	var selected []string
	switch method {
	case "analyze":
		return nil
	case "random":
		selected = s.Random(files, samplePercent)
	case "size":
		selected, err = s.BySize(ctx, files, sampleMinKB, sampleMaxKB)
		if err != nil {
			return err
		}
	case "directory":
		selected = s.ByDirectory(files, samplePerDir)
	default:
		return fmt.Errorf("unknown sampling method %q", method)
	}

	ui.PrintInfo("Selected", fmt.Sprintf("%d of %d files", len(selected), len(files)))
	if len(selected) == 0 {
		return nil
	}

	dest := sampleOutputDir
	if dest == "" {
		dest = a.cfg.Paths.Resolve(a.cfg.Paths.SampleDir)
	}

	n, err := s.CopyTo(ctx, selected, dest, sampleMove)
	if err != nil {
		return err
	}

	verb := "Copied"
	if sampleMove {
		verb = "Moved"
	}
	ui.PrintSuccess(fmt.Sprintf("%s %d files to %s", verb, n, dest))
	return nil
}

func printAnalysis(a *sampler.Analysis) {
	ui.PrintHighlight("Corpus")
	ui.PrintInfo("Files", fmt.Sprint(a.TotalCount))
	ui.PrintInfo("Total size", a.TotalSizeFormatted)
	ui.PrintInfo("With EXIF", fmt.Sprint(a.WithExif))

	ui.PrintHighlight("\nTop directories")
	for _, d := range a.Directories {
		fmt.Printf("  %s: %d (%s)\n", d.Name, d.Count, d.SizeFormatted)
	}

	ui.PrintHighlight("\nExtensions")
	for _, e := range a.Extensions {
		fmt.Printf("  %s: %d (%s)\n", e.Name, e.Count, e.SizeFormatted)
	}
	fmt.Println()
}

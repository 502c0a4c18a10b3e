package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/internal/app"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/pipeline"
	"github.com/nvr-ai/go-detect/preview"
	"github.com/nvr-ai/go-detect/report"
	"github.com/nvr-ai/go-detect/util"
)

type options struct {
	image      string
	dir        string
	model      string
	confidence float64
	output     string
	configPath string
	showWindow bool
	guide      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.image, "image", "", "Path to a JPG, PNG or WebP image")
	flag.StringVar(&opts.dir, "dir", "", "Process every image in a directory")
	flag.StringVar(&opts.model, "model", "", "Model: "+joinNames(models.Names()))
	flag.Float64Var(&opts.confidence, "confidence", 0, "Detection confidence threshold (0.1 - 1.0); 0 uses the configured default")
	flag.StringVar(&opts.output, "output", "", "Annotated image path, or output directory with -dir")
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flag.BoolVar(&opts.showWindow, "show-window", false, "Show the original and annotated images")
	flag.BoolVar(&opts.guide, "guide", false, "Print the recommended settings guide and exit")
	flag.Parse()

	if opts.guide {
		if err := models.WriteGuide(os.Stdout); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if (opts.image == "") == (opts.dir == "") {
		return errors.New("exactly one of -image or -dir is required")
	}
	if opts.showWindow && !preview.Available {
		return preview.ErrUnavailable
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	model := cfg.DefaultModel
	if opts.model != "" {
		model = models.Name(opts.model)
	}
	threshold := cfg.DefaultThreshold
	if opts.confidence != 0 {
		threshold = float32(opts.confidence)
	}

	var files []util.ImageFile
	if opts.image != "" {
		file, err := util.LoadImageFile(opts.image)
		if err != nil {
			return err
		}
		files = append(files, file)
	} else {
		files, err = util.LoadDirectoryImageFiles(opts.dir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.Errorf("no images found in %s", opts.dir)
		}
		if opts.output != "" {
			if err := os.MkdirAll(opts.output, 0o755); err != nil {
				return errors.Wrap(err, "failed to create output directory")
			}
		}
	}

	ctx := context.Background()
	for _, file := range files {
		img, format, err := images.DecodeBytes(file.Data)
		if err != nil {
			return errors.Wrap(err, file.Path)
		}

		result, err := a.Runner.Run(ctx, pipeline.Request{Image: img, Model: model, Threshold: threshold})
		if err != nil {
			return errors.Wrap(err, file.Path)
		}

		fmt.Printf("%s (%s, confidence %.2f, %dms)\n", file.Path, result.Model, result.Threshold, result.Elapsed.Milliseconds())
		if err := printRecords(os.Stdout, result.Records); err != nil {
			return err
		}
		for _, hint := range result.Hints {
			fmt.Printf("Hint: %s\n", hint)
		}

		if out := outputPath(opts, file.Path); out != "" {
			if err := writeImage(out, result, format); err != nil {
				return err
			}
			fmt.Printf("Annotated image saved to %s\n", out)
		}

		if opts.showWindow {
			if err := preview.Show(result.Original, result.Annotated); err != nil {
				return err
			}
		}
	}
	return nil
}

// printRecords writes the detected objects table or the empty notice.
func printRecords(w io.Writer, records []report.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No Object Detected")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tObject Type\tConfidence")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.ObjectType, r.Confidence)
	}
	return tw.Flush()
}

// outputPath returns where to write the annotated copy of src, or "" to skip.
func outputPath(opts options, src string) string {
	if opts.output == "" {
		return ""
	}
	if opts.dir != "" {
		return filepath.Join(opts.output, "annotated_"+filepath.Base(src))
	}
	return opts.output
}

func writeImage(path string, result *pipeline.Result, fallback images.Format) error {
	format, err := images.FormatFromPath(path)
	if err != nil {
		format = fallback
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output")
	}
	if err := images.Encode(f, result.Annotated, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func joinNames(names []models.Name) string {
	s := make([]string, len(names))
	for i, n := range names {
		s[i] = string(n)
	}
	return strings.Join(s, ", ")
}

package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"megrep/pkg/config"
	errs "megrep/pkg/errors"
	"megrep/pkg/logger"
	"megrep/pkg/paths"
)

// maxStderr bounds how much encoder output is attached to a failure log
const maxStderr = 512

// Encoder converts one input into one output format
type Encoder interface {
	Encode(ctx context.Context, format paths.Format, input, output string) bool
}

// Adapter builds encoder command lines from configuration
type Adapter struct {
	cfg    config.FormatsConfig
	runner Runner
	logger logger.Logger
}

// New creates an adapter. A nil runner defaults to ExecRunner.
func New(cfg config.FormatsConfig, runner Runner, log logger.Logger) *Adapter {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Adapter{
		cfg:    cfg,
		runner: runner,
		logger: log.WithField("component", "encoder"),
	}
}

// Encode ensures the output directory exists and runs the encoder for
// format. It reports whether the encoder exited successfully.
func (a *Adapter) Encode(ctx context.Context, format paths.Format, input, output string) (ok bool) {
	log := a.logger.WithFields(map[string]interface{}{
		"format": string(format),
		"input":  input,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Error("Encoder panicked")
			ok = false
		}
	}()

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		log.WithError(errs.New(errs.ErrorTypeEncode, "create output dir", output, err)).
			Warn("Failed to prepare output directory")
		return false
	}

	name, args, err := a.Command(format, input, output)
	if err != nil {
		log.WithError(err).Warn("Unsupported format")
		return false
	}

	res := a.runner.Run(ctx, name, args...)
	if res.Err != nil {
		log.WithError(errs.New(errs.ErrorTypeEncode, name, input, res.Err)).
			WithField("stderr", truncate(strings.TrimSpace(res.Stderr), maxStderr)).
			Warn("Encoder failed")
		return false
	}

	return true
}

// Command returns the binary and arguments used to encode input as format
func (a *Adapter) Command(format paths.Format, input, output string) (string, []string, error) {
	switch format {
	case paths.AVIF:
		return a.cfg.Avif.Binary, []string{
			"-q", strconv.Itoa(a.cfg.Avif.Quality),
			"-s", strconv.Itoa(a.cfg.Avif.Speed),
			input,
			output,
		}, nil
	case paths.WebP:
		return a.cfg.Webp.Binary, []string{
			"-metadata", a.cfg.Webp.Metadata,
			"-q", strconv.Itoa(a.cfg.Webp.Quality),
			"-m", strconv.Itoa(a.cfg.Webp.Method),
			input,
			"-o", output,
		}, nil
	default:
		return "", nil, fmt.Errorf("unknown format %q", format)
	}
}

// CheckBinaries verifies that both encoder binaries are on PATH
func (a *Adapter) CheckBinaries() error {
	var missing []string
	for _, bin := range []string{a.cfg.Avif.Binary, a.cfg.Webp.Binary} {
		if err := LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return errs.New(errs.ErrorTypeConfig, "check encoders", "",
			fmt.Errorf("encoder binaries not found on PATH: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

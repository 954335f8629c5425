// Package compiler runs an external LaTeX toolchain and guarantees a PDF even
// when the toolchain is missing or fails.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
)

// Config bounds compiler runs.
type Config struct {
	ScratchDir    string
	Timeout       time.Duration
	MaxConcurrent int64
}

// DefaultConfig returns a 60s timeout and two concurrent compiler processes.
func DefaultConfig() Config {
	return Config{
		ScratchDir:    filepath.Join(os.TempDir(), "examdoc"),
		Timeout:       60 * time.Second,
		MaxConcurrent: 2,
	}
}

// Output is the result of one compile.
type Output struct {
	PDF []byte
	// Fallback is set when PDF is the synthesized diagnostic document.
	Fallback bool
	// Cause is why the fallback was produced.
	Cause error
	// SourcePath is the scratch .tex file.
	SourcePath string
}

// paranoidEnv keeps TeX from reading or writing outside the working
// directory or through absolute and parent paths.
var paranoidEnv = []string{"openin_any=p", "openout_any=p", "shell_escape=f"}

// auxExtensions are removed after a successful compile.
var auxExtensions = []string{".aux", ".log", ".out"}

// Adapter compiles LaTeX sources in a scratch directory.
type Adapter struct {
	locator Locator
	cfg     Config
	sem     *semaphore.Weighted
	log     logrus.FieldLogger
}

// NewAdapter returns an Adapter. Zero Config fields take their defaults.
func NewAdapter(locator Locator, cfg Config, log logrus.FieldLogger) *Adapter {
	def := DefaultConfig()
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = def.ScratchDir
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	api.DisableConfigDir()

	return &Adapter{
		locator: locator,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
		log:     logging.OrDiscard(log),
	}
}

// Compile typesets source. Any compiler failure yields a fallback document and
// a nil error; only cancellation of ctx is returned as an error.
func (a *Adapter) Compile(ctx context.Context, renderID, source string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	log := a.log.WithField("render_id", renderID)
	dir := a.cfg.ScratchDir
	texPath := filepath.Join(dir, renderID+".tex")
	pdfPath := filepath.Join(dir, renderID+".pdf")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return a.fallback(log, renderID, "", fmt.Errorf("os.MkdirAll failed: %w", err)), nil
	}
	if err := os.WriteFile(texPath, []byte(source), 0o644); err != nil {
		return a.fallback(log, renderID, "", fmt.Errorf("os.WriteFile failed: %w", err)), nil
	}

	bin, err := a.locator.Locate()
	if err != nil {
		return a.fallback(log, renderID, texPath, &UnavailableError{Err: err}), nil
	}
	log = log.WithField("compiler", bin)

	if err := a.sem.Acquire(ctx, 1); err != nil {
		return Output{}, err
	}
	defer a.sem.Release(1)

	pdf, err := a.run(ctx, bin, dir, texPath, pdfPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, ctxErr
		}
		return a.fallback(log, renderID, texPath, err), nil
	}

	for _, ext := range auxExtensions {
		p := filepath.Join(dir, renderID+ext)
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("os.Remove failed")
		}
	}

	log.WithField("bytes", len(pdf)).Info("latex compiled")
	return Output{PDF: pdf, SourcePath: texPath}, nil
}

func (a *Adapter) run(ctx context.Context, bin, dir, texPath, pdfPath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"-no-shell-escape",
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", dir,
		texPath,
	)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), paranoidEnv...)
	cmd.WaitDelay = 2 * time.Second

	out, err := cmd.CombinedOutput()
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			err = fmt.Errorf("cmd.Run failed: %w", ctx.Err())
		} else {
			err = fmt.Errorf("cmd.Run failed: %w", err)
		}
		return nil, &CompileFailedError{Compiler: bin, ExitCode: code, Output: tail(out, 20), Err: err}
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, &CompileFailedError{Compiler: bin, Output: tail(out, 20), Err: fmt.Errorf("os.ReadFile failed: %w", err)}
	}
	if err := api.Validate(bytes.NewReader(pdf), model.NewDefaultConfiguration()); err != nil {
		return nil, &CompileFailedError{Compiler: bin, Output: tail(out, 20), Err: fmt.Errorf("api.Validate failed: %w", err)}
	}
	return pdf, nil
}

// fallback synthesizes the diagnostic document and leaves a copy next to the
// source for inspection.
func (a *Adapter) fallback(log logrus.FieldLogger, renderID, texPath string, cause error) Output {
	log.WithError(cause).Warn("latex compile failed, using fallback document")

	body := []string{
		"The exam could not be typeset, so this placeholder document was produced instead.",
		"",
		"Render ID: " + renderID,
		"Reason: " + cause.Error(),
	}
	if texPath != "" {
		body = append(body, "LaTeX source: "+texPath)
	}
	var failed *CompileFailedError
	if errors.As(cause, &failed) && failed.Output != "" {
		body = append(body, "", "Compiler output:")
		body = append(body, strings.Split(failed.Output, "\n")...)
	}

	pdf := Synthesize("Document compilation failed", body...)

	if texPath != "" {
		p := filepath.Join(a.cfg.ScratchDir, renderID+".pdf")
		if err := os.WriteFile(p, pdf, 0o644); err != nil {
			log.WithError(err).Warn("os.WriteFile failed")
		}
	}

	return Output{PDF: pdf, Fallback: true, Cause: cause, SourcePath: texPath}
}

// tail returns the last n non-empty lines of out.
func tail(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Package launcher implements the fallback-bundle launch sequence as a
// linear state machine: check the interpreter, check the package manager,
// install declared dependencies (non-fatal), then run the application
// entry point. Where the shell launcher replaces its own process image,
// this implementation spawns the child with inherited standard streams,
// forwards all arguments verbatim, and propagates the child's exit code
// as its own.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/architeuthis-flux/jumperless-forge/internal/depcache"
)

// Prerequisite failures abort the launch before any work begins.
var (
	ErrNoInterpreter    = errors.New("python interpreter not found")
	ErrNoPackageManager = errors.New("pip package manager not available")
)

// interpreterCandidates are tried in order when no interpreter is configured.
var interpreterCandidates = []string{"python3", "python", "python3.12", "python3.11", "python3.10"}

// Options configures one launch.
type Options struct {
	Dir          string // fallback bundle directory
	Entrypoint   string // entry source file, relative to Dir
	Requirements string // dependency manifest name, relative to Dir
	Interpreter  string // explicit interpreter; empty triggers a search
	CacheDir     string // optional dependency cache root
	Args         []string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// Confirm asks the operator whether to continue after a non-fatal
	// dependency install failure. Nil reads a y/N answer from Stdin.
	Confirm func(prompt string) bool

	// LookPath resolves programs on PATH; tests substitute fakes.
	LookPath func(name string) (string, error)
}

func (o *Options) setDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.LookPath == nil {
		o.LookPath = exec.LookPath
	}
	if o.Confirm == nil {
		o.Confirm = func(prompt string) bool {
			fmt.Fprint(o.Stdout, prompt)
			r := bufio.NewReader(o.Stdin)
			line, _ := r.ReadString('\n')
			answer := strings.ToLower(strings.TrimSpace(line))
			return answer == "y" || answer == "yes"
		}
	}
}

// Run executes the launch sequence and returns the application's exit
// code. Prerequisite failures return an error carrying a remediation
// hint; the caller reports it and exits non-zero.
func Run(ctx context.Context, opts Options) (int, error) {
	opts.setDefaults()

	interpreter, err := findInterpreter(opts)
	if err != nil {
		return 0, fmt.Errorf("%w: install Python 3.9+ from https://python.org and ensure it is on PATH", ErrNoInterpreter)
	}
	fmt.Fprintf(opts.Stdout, "Using Python: %s\n", interpreter)

	if err := checkPackageManager(ctx, interpreter, opts); err != nil {
		return 0, fmt.Errorf("%w: install it with: %s -m ensurepip --upgrade", ErrNoPackageManager, interpreter)
	}

	if err := installDependencies(ctx, interpreter, opts); err != nil {
		fmt.Fprintf(opts.Stdout, "Warning: failed to install dependencies: %v\n", err)
		fmt.Fprintf(opts.Stdout, "Please install dependencies manually:\n  %s -m pip install -r %s\n", interpreter, opts.Requirements)
		if !opts.Confirm("Continue anyway? [y/N] ") {
			return 1, nil
		}
		fmt.Fprintln(opts.Stdout, "Warning: continuing with possibly missing dependencies")
	}

	fmt.Fprintf(opts.Stdout, "Starting %s...\n", strings.TrimSuffix(opts.Entrypoint, filepath.Ext(opts.Entrypoint)))
	return execApplication(ctx, interpreter, opts)
}

func findInterpreter(opts Options) (string, error) {
	if opts.Interpreter != "" {
		return opts.LookPath(opts.Interpreter)
	}
	for _, c := range interpreterCandidates {
		if p, err := opts.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", ErrNoInterpreter
}

func checkPackageManager(ctx context.Context, interpreter string, opts Options) error {
	cmd := exec.CommandContext(ctx, interpreter, "-m", "pip", "--version")
	cmd.Dir = opts.Dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

// installDependencies runs pip against the dependency manifest. A missing
// manifest skips the step entirely; nothing is printed about dependencies
// in that case.
func installDependencies(ctx context.Context, interpreter string, opts Options) error {
	if opts.Requirements == "" {
		return nil
	}
	manifest := filepath.Join(opts.Dir, opts.Requirements)
	if _, err := os.Stat(manifest); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	fmt.Fprintln(opts.Stdout, "Installing dependencies...")
	args := []string{"-m", "pip", "install", "-r", opts.Requirements}
	if opts.CacheDir != "" {
		if dir, err := cacheDirFor(opts.CacheDir, manifest); err == nil {
			args = append(args, "--cache-dir", dir)
		}
	}
	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return err
	}
	fmt.Fprintln(opts.Stdout, "Dependencies installed successfully")
	return nil
}

// cacheDirFor maps the manifest to its content-addressed cache entry,
// creating the entry when absent.
func cacheDirFor(root, manifest string) (string, error) {
	key, err := depcache.Key(manifest)
	if err != nil {
		return "", err
	}
	c := depcache.New(root)
	if err := c.Populate(key, func(string) error { return nil }); err != nil {
		return "", err
	}
	return c.Dir(key), nil
}

// execApplication spawns the entry point with inherited streams and
// returns its exit code.
func execApplication(ctx context.Context, interpreter string, opts Options) (int, error) {
	args := append([]string{opts.Entrypoint}, opts.Args...)
	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.Stdin = opts.Stdin
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("failed to start application: %w", err)
}

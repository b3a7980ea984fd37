// Package python runs generated plotting code in an isolated Python subprocess.
package python

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	slopplot "github.com/haowjy/slopplot-go"
)

//go:embed harness.py
var harnessSource string

const (
	defaultCommand        = "python3"
	defaultTimeout        = 30 * time.Second
	defaultMaxOutputBytes = 8 << 20
	defaultMemoryBytes    = 1 << 30
	defaultDPI            = 100

	harnessFile  = "slopplot_harness.py"
	resultMarker = "\x1eSLOPPLOT_RESULT "
)

var _ slopplot.Executor = (*Executor)(nil)

// Config controls the interpreter subprocess.
type Config struct {
	Command        string        // Interpreter, "python3" by default
	Timeout        time.Duration // Wall clock limit per run; the caller's deadline wins when earlier
	MaxOutputBytes int           // Cap on captured stdout and stderr each
	MemoryBytes    int64         // RLIMIT_AS for the child; negative disables
	DPI            int           // PNG resolution for matplotlib renders
	Isolated       *bool         // Run with -I (ignore PYTHON* env and user site-packages); default true
	ExtraEnv       []string      // Appended to the scrubbed environment
	TempDir        string        // Parent of per-run scratch directories; os.TempDir() by default
}

// Invocation is one interpreter run.
type Invocation struct {
	Command string
	Args    []string
	Stdin   string
	Dir     string
	Env     []string
	Limit   int
}

// Runner executes the interpreter and returns stdout/stderr text.
type Runner func(ctx context.Context, inv Invocation) (string, string, error)

// Executor implements slopplot.Executor by invoking a Python interpreter as a subprocess.
// Each run gets its own scratch directory and a scrubbed environment.
type Executor struct {
	config   Config
	run      Runner
	lookPath func(string) (string, error)
	logger   *log.Logger
}

// NewExecutor creates an executor backed by the local interpreter.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		config:   normalizeConfig(cfg),
		run:      defaultRunner,
		lookPath: exec.LookPath,
		logger:   log.Default(),
	}
}

// NewExecutorWithRunner creates an executor with a custom runner for tests.
// The interpreter is not looked up on PATH.
func NewExecutorWithRunner(cfg Config, runner Runner) *Executor {
	e := NewExecutor(cfg)
	if runner != nil {
		e.run = runner
		e.lookPath = func(command string) (string, error) { return command, nil }
	}
	return e
}

// SetLogger replaces the logger. nil silences the executor.
func (e *Executor) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	e.logger = logger
}

type harnessRequest struct {
	Code        string            `json:"code"`
	Handles     []slopplot.Handle `json:"handles"`
	DataVar     string            `json:"data_var"`
	Data        any               `json:"data"`
	OutputVar   string            `json:"output_var"`
	MemoryBytes int64             `json:"memory_bytes,omitempty"`
	CPUSeconds  int               `json:"cpu_seconds,omitempty"`
	DPI         int               `json:"dpi"`
}

type envelope struct {
	Status    string          `json:"status"` // ok, error, output_missing, dependency_missing
	Kind      string          `json:"kind"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	Traceback string          `json:"traceback"`
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value"`
	ImagePNG  string          `json:"image_png"`
	Stdout    string          `json:"stdout"`
}

// Execute runs code with the namespace bound and returns the output variable.
func (e *Executor) Execute(ctx context.Context, code string, ns slopplot.Namespace) (*slopplot.ExecutionResult, error) {
	if ns.OutputVar == "" || ns.DataVar == "" {
		return nil, &slopplot.ConfigError{Field: "namespace", Value: ns.OutputVar, Reason: "data and output variable names are required"}
	}

	interpreter, err := e.lookPath(e.config.Command)
	if err != nil {
		return nil, &slopplot.DependencyError{
			Dependency: e.config.Command,
			Hint:       "install Python 3 or set the interpreter command",
		}
	}

	payload, err := e.buildRequest(code, ns)
	if err != nil {
		return nil, err
	}

	scratch := filepath.Join(e.config.TempDir, "slopplot-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	if err := os.WriteFile(filepath.Join(scratch, harnessFile), []byte(harnessSource), 0o600); err != nil {
		return nil, fmt.Errorf("write harness: %w", err)
	}

	budget := e.budget(ctx)
	runCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, runErr := e.run(runCtx, Invocation{
		Command: interpreter,
		Args:    e.args(),
		Stdin:   string(payload),
		Dir:     scratch,
		Env:     e.env(scratch),
		Limit:   e.config.MaxOutputBytes,
	})
	elapsed := time.Since(start)

	if ctxErr := runCtx.Err(); ctxErr != nil {
		e.logger.Printf("[PYEXEC] run aborted after %s: %v", elapsed, ctxErr)
		if !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &slopplot.ExecutionError{
				Kind:    "canceled",
				Message: fmt.Sprintf("execution canceled after %s", elapsed.Round(time.Millisecond)),
				Stderr:  stderr,
				Err:     ctxErr,
			}
		}
		return nil, &slopplot.ExecutionError{
			Kind:    "timeout",
			Message: fmt.Sprintf("execution did not finish within %s", budget),
			Stderr:  stderr,
			Err:     fmt.Errorf("%w: %w", slopplot.ErrTimeout, ctxErr),
		}
	}
	if errors.Is(runErr, errOutputLimit) {
		return nil, &slopplot.ExecutionError{
			Kind:    "output_limit",
			Message: fmt.Sprintf("generated code wrote more than %d bytes", e.config.MaxOutputBytes),
			Err:     runErr,
		}
	}

	env, ok := parseEnvelope(stdout)
	if !ok {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = "interpreter exited without a result"
		}
		return nil, &slopplot.ExecutionError{Kind: "interpreter", Message: msg, Stderr: stderr, Err: runErr}
	}

	e.logger.Printf("[PYEXEC] status=%s type=%s duration=%s", env.Status, env.Type, elapsed)
	return e.convertEnvelope(env, ns, stderr, elapsed)
}

// budget is the configured timeout, or less when the caller's deadline is sooner.
func (e *Executor) budget(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < e.config.Timeout {
			return until.Round(time.Millisecond)
		}
	}
	return e.config.Timeout
}

func (e *Executor) buildRequest(code string, ns slopplot.Namespace) ([]byte, error) {
	req := harnessRequest{
		Code:       code,
		Handles:    ns.Handles,
		DataVar:    ns.DataVar,
		Data:       ns.Data,
		OutputVar:  ns.OutputVar,
		CPUSeconds: int(e.config.Timeout.Seconds()) + 1,
		DPI:        e.config.DPI,
	}
	if e.config.MemoryBytes > 0 {
		req.MemoryBytes = e.config.MemoryBytes
	}
	switch raw := ns.Data.(type) {
	case json.RawMessage:
		req.Data = raw
	case []byte:
		if json.Valid(raw) {
			req.Data = json.RawMessage(raw)
		} else {
			// Same text the instruction rendered; Marshal would base64 it.
			req.Data = string(raw)
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &slopplot.ConfigError{Field: "data", Value: fmt.Sprintf("%T", ns.Data), Reason: "must be JSON-serializable to cross into the interpreter: " + err.Error()}
	}
	return payload, nil
}

func (e *Executor) convertEnvelope(env *envelope, ns slopplot.Namespace, stderr string, elapsed time.Duration) (*slopplot.ExecutionResult, error) {
	switch env.Status {
	case "ok":
		result := &slopplot.ExecutionResult{
			Variable: ns.OutputVar,
			Type:     env.Type,
			Value:    env.Value,
			Stdout:   env.Stdout,
			Duration: elapsed,
		}
		if env.ImagePNG != "" {
			image, err := base64.StdEncoding.DecodeString(env.ImagePNG)
			if err != nil {
				return nil, &slopplot.ExecutionError{Kind: "interpreter", Message: "invalid image encoding", Err: err}
			}
			result.Image = image
		}
		return result, nil
	case "output_missing":
		return nil, &slopplot.OutputMissingError{Variable: ns.OutputVar}
	case "dependency_missing":
		return nil, &slopplot.DependencyError{
			Dependency: env.Error,
			Hint:       strings.TrimSpace("install it in the interpreter's environment. " + env.Message),
		}
	case "error":
		return nil, &slopplot.ExecutionError{
			Kind:      env.Kind,
			Message:   env.Message,
			Traceback: env.Traceback,
			Stderr:    stderr,
		}
	default:
		return nil, &slopplot.ExecutionError{Kind: "interpreter", Message: "unknown harness status " + env.Status, Stderr: stderr}
	}
}

func (e *Executor) args() []string {
	args := []string{}
	if e.config.Isolated == nil || *e.config.Isolated {
		args = append(args, "-I")
	}
	return append(args, "-B", harnessFile)
}

// env builds the child environment from scratch. Only PATH is inherited.
func (e *Executor) env(scratch string) []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + scratch,
		"TMPDIR=" + scratch,
		"MPLBACKEND=Agg",
		"MPLCONFIGDIR=" + scratch,
		"PYTHONIOENCODING=utf-8",
		"PYTHONDONTWRITEBYTECODE=1",
	}
	return append(env, e.config.ExtraEnv...)
}

// parseEnvelope finds the last result line; anything the code wrote to the real stdout is ignored.
func parseEnvelope(stdout string) (*envelope, bool) {
	idx := strings.LastIndex(stdout, resultMarker)
	if idx < 0 {
		return nil, false
	}
	line, _, _ := strings.Cut(stdout[idx+len(resultMarker):], "\n")

	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil || env.Status == "" {
		return nil, false
	}
	return &env, true
}

func normalizeConfig(cfg Config) Config {
	normalized := cfg
	if strings.TrimSpace(normalized.Command) == "" {
		normalized.Command = defaultCommand
	}
	if normalized.Timeout <= 0 {
		normalized.Timeout = defaultTimeout
	}
	if normalized.MaxOutputBytes <= 0 {
		normalized.MaxOutputBytes = defaultMaxOutputBytes
	}
	if normalized.MemoryBytes == 0 {
		normalized.MemoryBytes = defaultMemoryBytes
	}
	if normalized.DPI <= 0 {
		normalized.DPI = defaultDPI
	}
	if normalized.TempDir == "" {
		normalized.TempDir = os.TempDir()
	}
	return normalized
}

var errOutputLimit = errors.New("python: output limit exceeded")

// cappedBuffer keeps at most limit bytes and drains the rest so the child never blocks on a full pipe.
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int
	exceeded bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room >= len(p) {
		return b.buf.Write(p)
	}
	if room > 0 {
		b.buf.Write(p[:room])
	}
	b.exceeded = true
	return len(p), nil
}

func defaultRunner(ctx context.Context, inv Invocation) (string, string, error) {
	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(inv.Stdin)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.WaitDelay = time.Second

	stdout := &cappedBuffer{limit: inv.Limit}
	stderr := &cappedBuffer{limit: inv.Limit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if stdout.exceeded {
		err = errOutputLimit
	}
	return stdout.buf.String(), stderr.buf.String(), err
}

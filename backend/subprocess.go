package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	executil "github.com/One-Up-Dev/ai-process-tester-apt/exec"
	"github.com/One-Up-Dev/ai-process-tester-apt/health"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// SubprocessConfig describes an external evaluator binary invoked once
// per item.
type SubprocessConfig struct {
	// ID and DisplayName identify this backend to the executor.
	ID          string
	DisplayName string

	// Command is the binary to invoke; Args are passed first and the
	// temporary input-file path is appended after them.
	Command string
	Args    []string

	// WorkDir is the working directory for the command, if any.
	WorkDir string

	// TempDir is the directory unique per-test input files are created
	// under. Defaults to os.TempDir() when empty.
	TempDir string

	// Timeout bounds a single invocation. Zero means no timeout beyond
	// the caller's context.
	Timeout time.Duration

	// MinVersion, if set, is enforced by Healthcheck via a version-flag
	// invocation of Command (VersionFlag defaults to "--version").
	MinVersion  string
	VersionFlag string
}

// Subprocess is a Backend that shells out to an external evaluator
// binary. It writes the target's reply to a unique per-test temporary
// file, passes its path as the binary's final argument, and always
// removes the file afterward regardless of outcome. A non-zero exit
// status is treated as a hard error carrying the stderr tail.
type Subprocess struct {
	cfg SubprocessConfig
}

// NewSubprocess returns a Subprocess backend driven by cfg.
func NewSubprocess(cfg SubprocessConfig) *Subprocess {
	return &Subprocess{cfg: cfg}
}

func (s *Subprocess) ID() string   { return s.cfg.ID }
func (s *Subprocess) Name() string { return s.cfg.DisplayName }

func (s *Subprocess) SupportedCategories() []types.Dimension {
	return nil
}

func (s *Subprocess) Capabilities() types.BackendCapabilities {
	return types.BackendCapabilities{}
}

func (s *Subprocess) Healthcheck(ctx context.Context) (available bool, version string, errMessage string) {
	if s.cfg.MinVersion != "" {
		flag := s.cfg.VersionFlag
		if flag == "" {
			flag = "--version"
		}
		status := health.BinaryVersionCheck(s.cfg.Command, s.cfg.MinVersion, flag)
		if !status.IsHealthy() {
			return false, "", status.Message
		}
		return true, status.Message, ""
	}

	status := health.BinaryCheck(s.cfg.Command)
	if !status.IsHealthy() {
		return false, "", status.Message
	}
	path, err := executil.BinaryPath(s.cfg.Command)
	if err != nil {
		return false, "", err.Error()
	}
	return true, path, ""
}

// Execute sends item.Input through target, writes the reply to a unique
// temporary file, invokes the configured command with that file path
// appended to Args, and reports pass/fail from the command's result: a
// zero exit with non-empty stdout is a pass, a zero exit with empty
// stdout is a fail, and a non-zero exit is a hard error carrying the
// stderr tail. The temporary file is removed before Execute returns, whether
// the invocation succeeded or failed.
func (s *Subprocess) Execute(ctx context.Context, item types.Item, target adapter.Adapter) (types.TestResult, error) {
	resp, err := target.Send(ctx, item.Input)
	if err != nil {
		return types.TestResult{}, err
	}

	tempDir := s.cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	inputPath := filepath.Join(tempDir, fmt.Sprintf("apt-%s-%s.txt", item.ID, uuid.NewString()))

	if err := os.WriteFile(inputPath, []byte(resp.Content), 0o600); err != nil {
		return types.TestResult{}, fmt.Errorf("backend: writing subprocess input file: %w", err)
	}
	defer os.Remove(inputPath)

	result, err := executil.Run(ctx, executil.Config{
		Command: s.cfg.Command,
		Args:    append(append([]string{}, s.cfg.Args...), inputPath),
		WorkDir: s.cfg.WorkDir,
		Timeout: s.cfg.Timeout,
	})
	if err != nil {
		return types.TestResult{}, fmt.Errorf("backend: subprocess execution failed: %w", err)
	}
	if result.ExitCode != 0 {
		return types.TestResult{}, fmt.Errorf("backend: subprocess exited %d: %s", result.ExitCode, stderrTail(result.Stderr))
	}

	passed := strings.TrimSpace(string(result.Stdout)) != ""
	score := 0.0
	if passed {
		score = 1.0
	}

	return types.TestResult{
		ItemID:     item.ID,
		BackendID:  s.ID(),
		Passed:     passed,
		Score:      score,
		RawOutput:  resp.Content,
		DurationMs: result.Duration.Milliseconds(),
		Timestamp:  time.Now(),
	}, nil
}

// stderrTail returns at most the last 2KB of stderr output, so a huge
// evaluator failure doesn't flood the error message.
func stderrTail(stderr []byte) string {
	const maxTail = 2048
	if len(stderr) <= maxTail {
		return string(stderr)
	}
	return string(stderr[len(stderr)-maxTail:])
}

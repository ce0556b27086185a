package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/runsight/runsight/internal/model"
)

// logFormat renders one commit per line: hash, author, strict ISO date and
// subject, tab-separated.
const logFormat = "%H%x09%an%x09%aI%x09%s"

var (
	ErrUnknownRef     = errors.New("unknown git ref")
	ErrNotARepository = errors.New("not a git repository")
	ErrTimeout        = errors.New("git invocation timed out")
)

// Client runs git against a working tree and parses the results. Output
// ordering is git's own; nothing is re-sorted.
type Client interface {
	// DiffNameStatus lists files changed between baseRef and the working tree.
	DiffNameStatus(ctx context.Context, dir, baseRef string) ([]model.FileChange, error)

	// DiffStats returns per-file insertion/deletion counts keyed by path.
	DiffStats(ctx context.Context, dir, baseRef string) (map[string]model.DiffStat, error)

	// LogSince lists commits reachable from HEAD but not from baseRef,
	// newest first.
	LogSince(ctx context.Context, dir, baseRef string) ([]model.Commit, error)

	// Diff returns the full textual diff against baseRef.
	Diff(ctx context.Context, dir, baseRef string) (string, error)
}

// ExecClient implements Client by invoking the git binary through a
// CommandRunner.
type ExecClient struct {
	runner CommandRunner
}

// NewExecClient creates an ExecClient. A nil runner defaults to executing
// commands directly.
func NewExecClient(runner CommandRunner) *ExecClient {
	if runner == nil {
		runner = ExecCommandRunner{}
	}
	return &ExecClient{runner: runner}
}

func (c *ExecClient) DiffNameStatus(ctx context.Context, dir, baseRef string) ([]model.FileChange, error) {
	out, err := c.run(ctx, dir, "diff", "--name-status", baseRef)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(string(out)), nil
}

func (c *ExecClient) DiffStats(ctx context.Context, dir, baseRef string) (map[string]model.DiffStat, error) {
	out, err := c.run(ctx, dir, "diff", "--numstat", baseRef)
	if err != nil {
		return nil, err
	}
	return parseNumstat(string(out)), nil
}

func (c *ExecClient) LogSince(ctx context.Context, dir, baseRef string) ([]model.Commit, error) {
	out, err := c.run(ctx, dir, "log", "--pretty=format:"+logFormat, baseRef+"..HEAD")
	if err != nil {
		return nil, err
	}
	return parseLog(string(out)), nil
}

func (c *ExecClient) Diff(ctx context.Context, dir, baseRef string) (string, error) {
	out, err := c.run(ctx, dir, "diff", baseRef)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *ExecClient) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	out, err := c.runner.Run(ctx, Command{
		Name: "git",
		Args: args,
		Dir:  dir,
		Env:  []string{"GIT_TERMINAL_PROMPT=0"},
	})
	if err != nil {
		var exitErr *exec.ExitError
		stderr := ""
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, classifyGitError(args, err, stderr, ctx.Err())
	}
	return out, nil
}

// classifyGitError maps a failed invocation onto the tagged errors callers
// branch on. A done context means the process was killed at the deadline;
// everything else is classified off git's stderr.
func classifyGitError(args []string, err error, stderr string, ctxErr error) error {
	invocation := "git " + strings.Join(args, " ")

	if ctxErr != nil {
		return fmt.Errorf("%s: %w", invocation, ErrTimeout)
	}

	switch msg := strings.ToLower(stderr); {
	case strings.Contains(msg, "not a git repository"):
		return fmt.Errorf("%s: %w", invocation, ErrNotARepository)
	case strings.Contains(msg, "unknown revision"),
		strings.Contains(msg, "bad revision"),
		strings.Contains(msg, "ambiguous argument"):
		return fmt.Errorf("%s: %w: %s", invocation, ErrUnknownRef, stderr)
	}

	if stderr != "" {
		return fmt.Errorf("%s: %w: %s", invocation, err, stderr)
	}
	return fmt.Errorf("%s: %w", invocation, err)
}

func parseNameStatus(out string) []model.FileChange {
	var changes []model.FileChange
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		// Renames and copies carry two paths; the new path identifies the file.
		changes = append(changes, model.FileChange{
			Status: parts[0],
			Path:   parts[len(parts)-1],
		})
	}
	return changes
}

func parseNumstat(out string) map[string]model.DiffStat {
	stats := make(map[string]model.DiffStat)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		// Binary files report "-" counts; they stay zero.
		ins, _ := strconv.Atoi(parts[0])
		del, _ := strconv.Atoi(parts[1])
		stats[resolveRenamedPath(parts[2])] = model.DiffStat{
			Insertions: ins,
			Deletions:  del,
		}
	}
	return stats
}

// resolveRenamedPath normalizes numstat rename notation ("old => new", or
// "pre/{old => new}/post") to the new path so stats line up with
// name-status output.
func resolveRenamedPath(path string) string {
	if i := strings.Index(path, "{"); i != -1 {
		j := strings.Index(path, " => ")
		k := strings.Index(path, "}")
		if j > i && k > j {
			return path[:i] + path[j+4:k] + path[k+1:]
		}
		return path
	}
	if j := strings.Index(path, " => "); j != -1 {
		return path[j+4:]
	}
	return path
}

func parseLog(out string) []model.Commit {
	var commits []model.Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) < 4 {
			continue
		}
		date, _ := time.Parse(time.RFC3339, parts[2])
		commits = append(commits, model.Commit{
			Hash:    parts[0],
			Author:  parts[1],
			Date:    date,
			Message: parts[3],
		})
	}
	return commits
}

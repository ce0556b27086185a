package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/runsight/runsight/common/logger"
	"github.com/runsight/runsight/core/config"
	"github.com/runsight/runsight/internal/git"
	"github.com/runsight/runsight/internal/model"
)

type AnalyzeParams struct {
	// BaseRef is the ref the working tree is compared against.
	BaseRef string
	// IncludeDiff controls whether diff text is retrieved at all.
	IncludeDiff bool
	// MaxDiffLines bounds returned diff text; zero or negative uses the
	// configured default.
	MaxDiffLines int
}

type AnalysisService interface {
	Analyze(ctx context.Context, params AnalyzeParams) (*model.ChangeSummary, error)
}

var ErrBaseRefRequired = errors.New("base ref is required")

type analysisService struct {
	git    git.Client
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

func NewAnalysisService(gitClient git.Client, cfg config.AnalysisConfig, log *slog.Logger) AnalysisService {
	if log == nil {
		log = slog.Default()
	}
	return &analysisService{
		git:    gitClient,
		cfg:    cfg,
		logger: log,
	}
}

// Analyze summarizes the change set between BaseRef and the working tree:
// changed files merged with per-file stats, commits on top of the base, and
// optionally the diff text. The whole call is bounded by the configured git
// timeout; a deadline hit kills the running git process.
func (s *analysisService) Analyze(ctx context.Context, params AnalyzeParams) (*model.ChangeSummary, error) {
	if params.BaseRef == "" {
		return nil, ErrBaseRefRequired
	}

	maxLines := params.MaxDiffLines
	if maxLines <= 0 {
		maxLines = s.cfg.MaxDiffLines
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GitTimeout)
	defer cancel()

	sc := logger.StartSpan(ctx, "analysis.changes")
	defer sc.End()
	ctx = sc.Context()

	files, err := s.git.DiffNameStatus(ctx, s.cfg.RepoDir, params.BaseRef)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	stats, err := s.git.DiffStats(ctx, s.cfg.RepoDir, params.BaseRef)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}
	for i := range files {
		if st, ok := stats[files[i].Path]; ok {
			files[i].Insertions = st.Insertions
			files[i].Deletions = st.Deletions
		}
	}

	commits, err := s.git.LogSince(ctx, s.cfg.RepoDir, params.BaseRef)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	// A clean tree is a summary with empty lists, not null fields.
	if files == nil {
		files = []model.FileChange{}
	}
	if commits == nil {
		commits = []model.Commit{}
	}

	summary := &model.ChangeSummary{
		BaseRef: params.BaseRef,
		Files:   files,
		Commits: commits,
	}

	if params.IncludeDiff {
		diff, err := s.git.Diff(ctx, s.cfg.RepoDir, params.BaseRef)
		if err != nil {
			sc.RecordError(err)
			return nil, err
		}
		summary.Diff, summary.Truncated, summary.TotalDiffLines = truncateDiff(diff, maxLines)
	}

	s.logger.InfoContext(ctx, "change analysis complete",
		"base_ref", params.BaseRef,
		"files", len(files),
		"commits", len(commits),
		"truncated", summary.Truncated,
	)

	return summary, nil
}

// truncateDiff bounds diff text to maxLines lines while reporting the true
// line count, so callers can tell how much was cut.
func truncateDiff(diff string, maxLines int) (text string, truncated bool, total int) {
	if diff == "" {
		return "", false, 0
	}

	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	total = len(lines)
	if total <= maxLines {
		return diff, false, total
	}
	return strings.Join(lines[:maxLines], "\n") + "\n", true, total
}

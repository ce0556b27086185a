package service_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/runsight/runsight/core/config"
	"github.com/runsight/runsight/internal/git"
	"github.com/runsight/runsight/internal/model"
	"github.com/runsight/runsight/internal/service"
)

var _ = Describe("AnalysisService", func() {
	var (
		svc       service.AnalysisService
		gitClient *mockGitClient
		cfg       config.AnalysisConfig
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		gitClient = &mockGitClient{}
		cfg = config.AnalysisConfig{
			RepoDir:      "/repo",
			MaxDiffLines: 500,
			GitTimeout:   5 * time.Second,
		}

		svc = service.NewAnalysisService(gitClient, cfg, nil)
	})

	Describe("Analyze", func() {
		Context("with a changed working tree", func() {
			BeforeEach(func() {
				gitClient.diffNameStatusFn = func(ctx context.Context, dir, baseRef string) ([]model.FileChange, error) {
					Expect(dir).To(Equal("/repo"))
					return []model.FileChange{
						{Path: "main.go", Status: "M"},
						{Path: "internal/new.go", Status: "A"},
					}, nil
				}
				gitClient.diffStatsFn = func(ctx context.Context, dir, baseRef string) (map[string]model.DiffStat, error) {
					return map[string]model.DiffStat{
						"main.go":         {Insertions: 10, Deletions: 2},
						"internal/new.go": {Insertions: 30, Deletions: 0},
					}, nil
				}
				gitClient.logSinceFn = func(ctx context.Context, dir, baseRef string) ([]model.Commit, error) {
					return []model.Commit{
						{Hash: "def456", Author: "Grace", Message: "second"},
						{Hash: "abc123", Author: "Ada", Message: "first"},
					}, nil
				}
			})

			It("merges file stats into the change list", func() {
				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main"})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.BaseRef).To(Equal("main"))
				Expect(summary.Files).To(HaveLen(2))
				Expect(summary.Files[0].Path).To(Equal("main.go"))
				Expect(summary.Files[0].Insertions).To(Equal(10))
				Expect(summary.Files[0].Deletions).To(Equal(2))
				Expect(summary.Files[1].Insertions).To(Equal(30))
			})

			It("keeps commit ordering as git reported it", func() {
				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main"})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Commits).To(HaveLen(2))
				Expect(summary.Commits[0].Hash).To(Equal("def456"))
				Expect(summary.Commits[1].Hash).To(Equal("abc123"))
			})

			It("skips diff retrieval when the diff is not requested", func() {
				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main", IncludeDiff: false})

				Expect(err).NotTo(HaveOccurred())
				Expect(gitClient.diffCalls).To(BeZero())
				Expect(summary.Diff).To(BeEmpty())
				Expect(summary.Truncated).To(BeFalse())
				Expect(summary.TotalDiffLines).To(BeZero())
			})

			It("bounds the whole call with the configured timeout", func() {
				var sawDeadline bool
				gitClient.diffNameStatusFn = func(ctx context.Context, dir, baseRef string) ([]model.FileChange, error) {
					_, sawDeadline = ctx.Deadline()
					return nil, nil
				}

				_, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main"})

				Expect(err).NotTo(HaveOccurred())
				Expect(sawDeadline).To(BeTrue())
			})
		})

		Context("when the diff is requested", func() {
			It("returns short diffs whole", func() {
				diff := "line1\nline2\nline3\n"
				gitClient.diffFn = func(ctx context.Context, dir, baseRef string) (string, error) {
					return diff, nil
				}

				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main", IncludeDiff: true})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Diff).To(Equal(diff))
				Expect(summary.Truncated).To(BeFalse())
				Expect(summary.TotalDiffLines).To(Equal(3))
			})

			It("truncates long diffs while reporting the true size", func() {
				var lines []string
				for i := 0; i < 10; i++ {
					lines = append(lines, "line")
				}
				gitClient.diffFn = func(ctx context.Context, dir, baseRef string) (string, error) {
					return strings.Join(lines, "\n") + "\n", nil
				}

				summary, err := svc.Analyze(ctx, service.AnalyzeParams{
					BaseRef:      "main",
					IncludeDiff:  true,
					MaxDiffLines: 4,
				})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Truncated).To(BeTrue())
				Expect(summary.TotalDiffLines).To(Equal(10))
				Expect(strings.Count(summary.Diff, "\n")).To(Equal(4))
			})

			It("is deterministic for a fixed payload and bound", func() {
				gitClient.diffFn = func(ctx context.Context, dir, baseRef string) (string, error) {
					return "a\nb\nc\nd\ne\n", nil
				}
				params := service.AnalyzeParams{BaseRef: "main", IncludeDiff: true, MaxDiffLines: 2}

				first, err := svc.Analyze(ctx, params)
				Expect(err).NotTo(HaveOccurred())
				second, err := svc.Analyze(ctx, params)
				Expect(err).NotTo(HaveOccurred())

				Expect(first.Diff).To(Equal(second.Diff))
				Expect(first.Diff).To(Equal("a\nb\n"))
			})

			It("falls back to the configured bound when the requested one is not positive", func() {
				cfg.MaxDiffLines = 2
				svc = service.NewAnalysisService(gitClient, cfg, nil)
				gitClient.diffFn = func(ctx context.Context, dir, baseRef string) (string, error) {
					return "a\nb\nc\n", nil
				}

				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main", IncludeDiff: true})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Truncated).To(BeTrue())
				Expect(summary.TotalDiffLines).To(Equal(3))
				Expect(summary.Diff).To(Equal("a\nb\n"))
			})

			It("reports an empty diff without truncation", func() {
				gitClient.diffFn = func(ctx context.Context, dir, baseRef string) (string, error) {
					return "", nil
				}

				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main", IncludeDiff: true})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Diff).To(BeEmpty())
				Expect(summary.Truncated).To(BeFalse())
				Expect(summary.TotalDiffLines).To(BeZero())
			})
		})

		Context("with an empty change set", func() {
			It("returns an empty summary and no error", func() {
				summary, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main"})

				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Files).To(BeEmpty())
				Expect(summary.Commits).To(BeEmpty())
				// Empty lists, not nulls, in the serialized form.
				Expect(summary.Files).NotTo(BeNil())
				Expect(summary.Commits).NotTo(BeNil())
			})
		})

		Context("without a base ref", func() {
			It("rejects the call before touching git", func() {
				called := false
				gitClient.diffNameStatusFn = func(ctx context.Context, dir, baseRef string) ([]model.FileChange, error) {
					called = true
					return nil, nil
				}

				_, err := svc.Analyze(ctx, service.AnalyzeParams{})

				Expect(err).To(MatchError(service.ErrBaseRefRequired))
				Expect(called).To(BeFalse())
			})
		})

		Context("when git fails", func() {
			It("propagates tagged ref errors", func() {
				gitClient.diffNameStatusFn = func(ctx context.Context, dir, baseRef string) ([]model.FileChange, error) {
					return nil, git.ErrUnknownRef
				}

				_, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "nope"})

				Expect(errors.Is(err, git.ErrUnknownRef)).To(BeTrue())
			})

			It("propagates repository errors from any stage", func() {
				gitClient.logSinceFn = func(ctx context.Context, dir, baseRef string) ([]model.Commit, error) {
					return nil, git.ErrNotARepository
				}

				_, err := svc.Analyze(ctx, service.AnalyzeParams{BaseRef: "main"})

				Expect(errors.Is(err, git.ErrNotARepository)).To(BeTrue())
			})
		})
	})
})

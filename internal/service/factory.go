package service

import (
	"log/slog"

	"github.com/runsight/runsight/core/config"
	"github.com/runsight/runsight/internal/git"
	"github.com/runsight/runsight/internal/mapper"
	"github.com/runsight/runsight/internal/store"
)

type Services struct {
	eventLog store.EventLogStore
	mapper   mapper.EventMapper
	git      git.Client
	cfg      config.Config
	logger   *slog.Logger
}

func NewServices(eventLog store.EventLogStore, gitClient git.Client, cfg config.Config, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{
		eventLog: eventLog,
		mapper:   mapper.NewGitHubEventMapper(),
		git:      gitClient,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *Services) Ingest() IngestService {
	return NewIngestService(s.eventLog, s.mapper, s.logger)
}

func (s *Services) Status() StatusService {
	return NewStatusService(s.eventLog, s.mapper, s.logger)
}

func (s *Services) Analysis() AnalysisService {
	return NewAnalysisService(s.git, s.cfg.Analysis, s.logger)
}

func (s *Services) Query() QueryService {
	return NewQueryService(s.eventLog, s.Status(), s.Analysis())
}

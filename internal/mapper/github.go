package mapper

import (
	"github.com/runsight/runsight/internal/model"
)

// runKeys are the payload objects that carry workflow identity, in lookup order.
var runKeys = []string{"workflow_run", "check_run"}

type GitHubEventMapper struct{}

func NewGitHubEventMapper() *GitHubEventMapper {
	return &GitHubEventMapper{}
}

// Fields lifts action, repository.full_name and sender.login out of the payload.
func (m *GitHubEventMapper) Fields(payload model.Payload) EventFields {
	var f EventFields
	f.Action, _ = payload.String("action")
	f.Repository, _ = payload.String("repository", "full_name")
	f.Sender, _ = payload.String("sender", "login")
	return f
}

// WorkflowName returns the workflow the payload belongs to: workflow_run.name
// when present, else check_run.name. Events naming neither belong to no
// workflow.
func (m *GitHubEventMapper) WorkflowName(payload model.Payload) (string, bool) {
	for _, key := range runKeys {
		if name, ok := payload.String(key, "name"); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

// Conclusion resolves the outcome of the run object carried by the payload:
// conclusion when set, else status, else the event action, else "unknown".
// GitHub leaves conclusion null while a run is still in flight.
func (m *GitHubEventMapper) Conclusion(payload model.Payload, action string) string {
	for _, key := range runKeys {
		run, ok := payload.Object(key)
		if !ok {
			continue
		}
		if c, ok := run.String("conclusion"); ok && c != "" {
			return c
		}
		if st, ok := run.String("status"); ok && st != "" {
			return st
		}
	}
	if action != "" {
		return action
	}
	return "unknown"
}

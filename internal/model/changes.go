package model

import "time"

// FileChange is one changed path between a base ref and the working tree.
// Status is git's name-status letter (A, M, D, R100, ...).
type FileChange struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// DiffStat carries per-file numstat counts. Binary files report zero counts.
type DiffStat struct {
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
}

// Commit is one commit reachable from the working state but not from the
// base ref.
type Commit struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

// ChangeSummary is the size-bounded description of a change set. It is
// produced fresh from live git output per request and never cached.
//
// Diff holds at most the first max-diff-lines lines of the unified diff;
// Truncated and TotalDiffLines preserve the fact and the true size of any
// cut. Files and Commits are always complete regardless of diff handling.
type ChangeSummary struct {
	BaseRef        string       `json:"base_ref"`
	Files          []FileChange `json:"files"`
	Commits        []Commit     `json:"commits"`
	Diff           string       `json:"diff,omitempty"`
	Truncated      bool         `json:"truncated"`
	TotalDiffLines int          `json:"total_diff_lines"`
}

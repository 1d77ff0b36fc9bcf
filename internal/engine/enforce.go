package engine

import "strconv"

// DuplicateStrictness selects what Scan does when an object repeats a key.
type DuplicateStrictness int

const (
	// DupIgnore keeps every member; lookups see the last one.
	DupIgnore DuplicateStrictness = iota
	// DupWarn reports each repeat to IssueSink and keeps scanning.
	DupWarn
	// DupError stops the scan at the first repeat.
	DupError
)

// EnforceOptions bounds a scan. Zero values disable the depth and size limits.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives repeated keys under DupWarn.
	IssueSink func(SimpleIssue)
}

// SimpleIssue locates one scan finding. Path is dotted and Offset is a byte
// offset into the scanned buffer.
type SimpleIssue struct {
	Code    string
	Path    string
	Key     string
	Message string
	Offset  int
}

// IssueError is returned by Scan for input that cannot continue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string {
	return e.SimpleIssue.Message + " at offset " + strconv.Itoa(e.SimpleIssue.Offset)
}

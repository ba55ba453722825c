package mergesearch

import (
	"fmt"
	"strings"
)

// BranchError is a per-branch search outcome: the branch could be searched
// (or at least named) but no further merges can be reported for it. The
// presenter turns these into warning lines and moves on to the next branch.
// Data-source failures are deliberately not BranchErrors, they abort the run.
type BranchError interface {
	error

	// Branch is the branch argument the search was invoked with.
	Branch() string

	// Message is the short explanation shown next to the branch name.
	Message() string
}

// InvalidBranchError means the branch argument did not resolve to a commit.
type InvalidBranchError struct {
	Ref string
}

func (e *InvalidBranchError) Branch() string  { return e.Ref }
func (e *InvalidBranchError) Message() string { return "Is not a valid commit!" }
func (e *InvalidBranchError) Error() string {
	return fmt.Sprintf("%v: %v", e.Ref, e.Message())
}

// DoesNotContainCommitError means the target commit is not an ancestor of the
// branch.
type DoesNotContainCommitError struct {
	Ref string
}

func (e *DoesNotContainCommitError) Branch() string  { return e.Ref }
func (e *DoesNotContainCommitError) Message() string { return "Does not contain commit." }
func (e *DoesNotContainCommitError) Error() string {
	return fmt.Sprintf("%v: %v", e.Ref, e.Message())
}

// DirectlyOnBranchError means the commit sits on the branch's first-parent
// history itself, so no merge commit brought it in.
type DirectlyOnBranchError struct {
	Ref string
}

func (e *DirectlyOnBranchError) Branch() string  { return e.Ref }
func (e *DirectlyOnBranchError) Message() string { return "Commit is directly on this branch." }
func (e *DirectlyOnBranchError) Error() string {
	return fmt.Sprintf("%v: %v", e.Ref, e.Message())
}

// MergedViaMultipleParentsError means more than one non-first parent of the
// candidate merge commit carries the target commit in its ancestry. The
// search reports the ambiguity instead of guessing a side.
type MergedViaMultipleParentsError struct {
	Ref     string
	Parents []string
}

func (e *MergedViaMultipleParentsError) Branch() string { return e.Ref }
func (e *MergedViaMultipleParentsError) Message() string {
	return fmt.Sprintf("Merged via multiple parents: %v", strings.Join(e.Parents, " "))
}
func (e *MergedViaMultipleParentsError) Error() string {
	return fmt.Sprintf("%v: %v", e.Ref, e.Message())
}

// InternalInconsistencyError signals a violated invariant of the ancestry
// graph. It is a bug report, not a user error, and aborts the run.
type InternalInconsistencyError struct {
	Commit string
}

func (e *InternalInconsistencyError) Error() string {
	return fmt.Sprintf("internal error: no parent of %v found in ancestry graph", e.Commit)
}

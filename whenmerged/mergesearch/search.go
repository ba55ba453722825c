// Package mergesearch locates the merge commit (or chain of merge commits)
// that brought a commit into the first-parent history of a branch.
//
// The search walks the branch's first-parent spine inside a bounded ancestry
// graph. The oldest spine commit still inside the graph is the merge that
// brought the commit in: any older spine commit is outside the ancestry range,
// so the commit must have arrived through one of that commit's other parents.
// Following that parent and repeating finds nested merges, outermost first.
package mergesearch

import (
	"context"

	"github.com/mhagger/git-when-merged/whenmerged/commitgraph"
	"github.com/mhagger/git-when-merged/whenmerged/pkg/logger"
)

// Source is the slice of the version-control data source the search needs.
type Source interface {
	commitgraph.Source

	// ResolveCommit resolves a revision expression to a full commit SHA.
	ResolveCommit(ctx context.Context, expr string) (string, error)
}

type Opts struct {
	Source Source
	Logger logger.Logger
}

type Search struct {
	opts Opts
}

func New(opts Opts) *Search {
	if opts.Logger == nil {
		opts.Logger = logger.Discard
	}
	s := &Search{}
	s.opts = opts
	return s
}

// FindMerges starts a search for the merges that brought commit into branch.
// commit must already be a full SHA; branch may be any revision expression.
//
// The returned iterator yields merge commits outermost first. Consuming only
// the first yield gives the outermost merge; consuming until Next reports
// false follows nested merges all the way down. After Next reports false,
// Err holds the outcome: nil for a completed search, a BranchError for the
// per-branch conditions, or a fatal error (data source failure, violated
// invariant).
func (s *Search) FindMerges(ctx context.Context, commit string, branch string) *Iter {
	return &Iter{
		ctx:    ctx,
		search: s,
		commit: commit,
		branch: branch,
	}
}

// Iter walks one branch's merge chain. Use like bufio.Scanner: Next, Merge,
// then Err once Next returns false.
type Iter struct {
	ctx    context.Context
	search *Search
	commit string
	branch string

	graph *commitgraph.Graph
	tip   string

	started bool
	done    bool
	cur     string
	err     error
	// pending is an outcome discovered while preparing the next descent. It
	// surfaces on the following Next call, after the current merge commit has
	// been consumed, matching the lazy semantics callers rely on: a
	// non-recursive caller that stops after the first merge never sees it.
	pending error
}

// Next advances to the next merge commit in the chain. It returns false when
// the chain is exhausted or the search failed; check Err to tell which.
func (it *Iter) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		if !it.start() {
			return false
		}
	}
	if it.pending != nil {
		it.fail(it.pending)
		return false
	}

	spine := it.graph.FirstParentSpine(it.tip)
	if len(spine) == 0 {
		it.fail(&DoesNotContainCommitError{Ref: it.branch})
		return false
	}

	// The oldest spine commit inside the bounded range is the one that merged
	// the commit in.
	last := spine[len(spine)-1]
	parents, err := it.graph.Parents(last)
	if err != nil {
		it.fail(err)
		return false
	}
	if len(parents) > 0 && parents[0] == it.commit {
		it.fail(&DirectlyOnBranchError{Ref: it.branch})
		return false
	}

	it.cur = last
	it.prepareDescent(parents)
	return true
}

// Merge returns the merge commit found by the last successful Next.
func (it *Iter) Merge() string {
	return it.cur
}

// Err returns the outcome of the search once Next has returned false. A nil
// result means the chain was reported completely.
func (it *Iter) Err() error {
	return it.err
}

func (it *Iter) start() bool {
	it.started = true

	tip, err := it.search.opts.Source.ResolveCommit(it.ctx, it.branch)
	if err != nil {
		it.fail(&InvalidBranchError{Ref: it.branch})
		return false
	}
	if tip == it.commit {
		it.fail(&DirectlyOnBranchError{Ref: it.branch})
		return false
	}

	it.search.opts.Logger.Debug("building ancestry graph", "commit", it.commit, "tip", tip)
	graph, err := commitgraph.Build(it.ctx, it.search.opts.Source, it.commit, tip)
	if err != nil {
		it.fail(err)
		return false
	}
	it.search.opts.Logger.Debug("ancestry graph built", "commits", graph.Len())

	it.graph = graph
	it.tip = tip
	return true
}

// prepareDescent decides what happens after the just-found merge commit: the
// chain either ends here (the commit is literally one of the parents), or it
// continues into the single parent that carried the commit, or it is
// ambiguous.
func (it *Iter) prepareDescent(parents []string) {
	for _, p := range parents {
		if p == it.commit {
			it.pending = nil
			it.done = true
			return
		}
	}

	var candidates []string
	for _, p := range parents {
		if it.graph.Contains(p) {
			candidates = append(candidates, p)
		}
	}
	switch {
	case len(candidates) == 0:
		// If the merge commit is in the ancestry range, at least one of its
		// parents must be too, or the target commit would not be among its
		// ancestors.
		it.pending = &InternalInconsistencyError{Commit: it.cur}
	case len(candidates) > 1:
		it.pending = &MergedViaMultipleParentsError{Ref: it.branch, Parents: candidates}
	default:
		it.tip = candidates[0]
	}
}

func (it *Iter) fail(err error) {
	it.err = err
	it.done = true
}

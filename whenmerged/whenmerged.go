// Package whenmerged finds the merge commit that brought a commit into the
// first-parent history of one or more branches and reports the results.
package whenmerged

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/mhagger/git-when-merged/whenmerged/mergesearch"
	"github.com/mhagger/git-when-merged/whenmerged/namer"
	"github.com/mhagger/git-when-merged/whenmerged/pkg/logger"
	"github.com/mhagger/git-when-merged/whenmerged/refselect"
)

// Source is the full version-control data source contract. The production
// implementation is gitsource.Source; tests supply in-memory fixtures.
type Source interface {
	mergesearch.Source
	refselect.Source
	namer.Source

	// DefaultAbbrev reads the configured default abbreviation length.
	DefaultAbbrev(ctx context.Context) (int, bool)

	// ShowLog, ShowDiff and Visualize are the post-processing actions run
	// for each reported merge commit.
	ShowLog(ctx context.Context, sha string, wholeBranch bool) error
	ShowDiff(ctx context.Context, sha string) error
	Visualize(ctx context.Context, sha string, target string, wholeBranch bool) error
}

type Opts struct {
	// Commit is the commit whose destiny should be determined.
	Commit string

	// Branches are explicit branch/commit arguments; Patterns and Names
	// select references by regexp and by configured pattern group. When all
	// three are empty, HEAD is searched.
	Branches []string
	Patterns []string
	Names    []string

	// Recursive follows merges back through nested merge levels.
	Recursive bool

	// ShowCommit prints only the merge SHA; ShowBranch prints the merged
	// range. Both turn per-branch misses into a non-zero exit.
	ShowCommit bool
	ShowBranch bool

	// Abbrev is the SHA abbreviation length; AbbrevSet records whether the
	// user chose it (otherwise the configured default applies). NoAbbrev
	// forces full SHAs.
	Abbrev    int
	AbbrevSet bool
	NoAbbrev  bool

	// Describe/DescribeContains name merges by tag instead of SHA.
	Describe         bool
	DescribeContains bool

	// Log, Diff and Visualize run the corresponding action per merge.
	Log       bool
	Diff      bool
	Visualize bool

	// Diag receives non-fatal diagnostics such as malformed patterns.
	Diag io.Writer

	Logger logger.Logger
}

// ExitError aborts the run with a bare message and a non-zero exit status.
// Used in ShowCommit/ShowBranch mode, where a miss must fail the command
// rather than print a warning line.
type ExitError struct {
	Msg string
}

func (e *ExitError) Error() string {
	return e.Msg
}

// Run performs the whole search: select references, walk each one's merge
// chain, and print the results to out. Per-branch misses become warning
// lines; failures of the data source or of argument resolution abort.
func Run(ctx context.Context, out io.Writer, src Source, opts Opts) error {
	if opts.Logger == nil {
		opts.Logger = logger.Discard
	}
	if opts.Diag == nil {
		opts.Diag = io.Discard
	}

	commit, err := src.ResolveCommit(ctx, opts.Commit)
	if err != nil {
		return err
	}

	mode := nameMode(ctx, src, &opts)
	nm := namer.New(namer.Opts{
		Source: src,
		Mode:   mode,
		Abbrev: opts.Abbrev,
	})

	branches, err := refselect.Select(ctx, src, opts.Diag, refselect.Opts{
		Branches: opts.Branches,
		Patterns: opts.Patterns,
		Names:    opts.Names,
	})
	if err != nil {
		return err
	}
	opts.Logger.Debug("selected branches", "count", len(branches))

	search := mergesearch.New(mergesearch.Opts{Source: src, Logger: opts.Logger})

	for _, branch := range branches {
		if err := runBranch(ctx, out, src, search, nm, opts, commit, branch); err != nil {
			return err
		}
	}
	return nil
}

// nameMode picks how merge commits are displayed. An explicit --abbrev wins,
// then the configured whenmerged.abbrev default; zero or negative lengths
// mean full SHAs.
func nameMode(ctx context.Context, src Source, opts *Opts) namer.Mode {
	switch {
	case opts.Describe:
		return namer.Describe
	case opts.DescribeContains:
		return namer.DescribeContains
	case opts.NoAbbrev:
		return namer.Raw
	}
	if !opts.AbbrevSet {
		n, ok := src.DefaultAbbrev(ctx)
		if !ok {
			return namer.Raw
		}
		opts.Abbrev = n
	}
	if opts.Abbrev <= 0 {
		return namer.Raw
	}
	return namer.Short
}

func runBranch(ctx context.Context, out io.Writer, src Source, search *mergesearch.Search, nm *namer.Namer, opts Opts, commit, branch string) error {
	first := true
	it := search.FindMerges(ctx, commit, branch)
	for it.Next() {
		sha := it.Merge()
		name, err := nm.Name(ctx, sha)
		if err != nil {
			return err
		}

		switch {
		case opts.ShowCommit:
			fmt.Fprintln(out, name)
		case opts.ShowBranch:
			fmt.Fprintf(out, "%v^1..%v\n", name, name)
		case first:
			fmt.Fprintf(out, "%-38v %v\n", branch, name)
		default:
			fmt.Fprintf(out, "%-38v via %v\n", "", name)
		}

		if opts.Log {
			if err := src.ShowLog(ctx, sha, opts.ShowBranch); err != nil {
				return err
			}
		}
		if opts.Diff {
			if err := src.ShowDiff(ctx, sha); err != nil {
				return err
			}
		}
		if opts.Visualize {
			if err := src.Visualize(ctx, sha, commit, opts.ShowBranch); err != nil {
				return err
			}
		}

		if !opts.Recursive {
			// Dropping the iterator here is safe: the ancestry graph is in
			// memory and no subprocess outlives AncestryPathWithParents.
			return nil
		}
		first = false
	}
	return reportOutcome(out, opts, it.Err(), first)
}

// reportOutcome applies the per-branch warning policy. A DirectlyOnBranch
// discovered while descending past the first merge is silent: the remaining
// chain is the commit's own line, not a deeper merge. An ambiguity discovered
// there is still worth a line, without repeating the branch name.
func reportOutcome(out io.Writer, opts Opts, err error, first bool) error {
	if err == nil {
		return nil
	}

	var direct *mergesearch.DirectlyOnBranchError
	var multiple *mergesearch.MergedViaMultipleParentsError
	var branchErr mergesearch.BranchError
	switch {
	case errors.As(err, &direct):
		if first {
			return warn(out, opts, direct.Branch(), direct.Message())
		}
		return nil
	case errors.As(err, &multiple):
		if first {
			return warn(out, opts, multiple.Branch(), multiple.Message())
		}
		return warn(out, opts, "", multiple.Message())
	case errors.As(err, &branchErr):
		return warn(out, opts, branchErr.Branch(), branchErr.Message())
	default:
		return err
	}
}

func warn(out io.Writer, opts Opts, refname, msg string) error {
	line := fmt.Sprintf("%-38v %v", refname, msg)
	if opts.ShowCommit || opts.ShowBranch {
		return &ExitError{Msg: line}
	}
	fmt.Fprintln(out, line)
	return nil
}

// Package gitsource is the production version-control data source. It shells
// out to the git binary in a repository directory and parses the output into
// the shapes the search, selection, and naming layers consume.
package gitsource

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mhagger/git-when-merged/whenmerged/commitgraph"
	"github.com/mhagger/git-when-merged/whenmerged/gitexec"
	"github.com/mhagger/git-when-merged/whenmerged/pkg/logger"
)

type Opts struct {
	// RepoDir is the directory git commands run in. Git itself discovers the
	// repository from there, so any directory inside a work tree works.
	RepoDir string

	// GitCommand overrides the git executable. Defaults to "git".
	GitCommand string

	// GitkCommand overrides the visualization tool. Defaults to "gitk".
	GitkCommand string

	Logger logger.Logger
}

type Source struct {
	opts Opts
}

func New(opts Opts) *Source {
	if opts.GitCommand == "" {
		opts.GitCommand = "git"
	}
	if opts.GitkCommand == "" {
		opts.GitkCommand = "gitk"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard
	}
	s := &Source{}
	s.opts = opts
	return s
}

// ResolveCommit resolves a revision expression to the full SHA of the commit
// it peels to.
func (s *Source) ResolveCommit(ctx context.Context, expr string) (string, error) {
	out, err := s.output(ctx, []string{"rev-parse", "--verify", "-q", expr + "^{commit}"})
	if err != nil {
		return "", errors.Errorf("%q is not a valid commit", expr)
	}
	return strings.TrimSpace(string(out)), nil
}

// AbbrevCommit abbreviates sha to at least length characters, longer if
// needed for uniqueness.
func (s *Source) AbbrevCommit(ctx context.Context, sha string, length int) (string, error) {
	args := []string{"rev-parse", "--verify", "-q", "--short=" + strconv.Itoa(length), sha}
	out, err := s.output(ctx, args)
	if err != nil {
		return "", errors.Errorf("%q is not a valid commit", sha)
	}
	return strings.TrimSpace(string(out)), nil
}

// SymbolicFullName resolves expr to its fully-qualified reference name. Note
// that git exits successfully with empty output when expr is valid but not a
// reference; both that case and outright failure report ok=false.
func (s *Source) SymbolicFullName(ctx context.Context, expr string) (string, bool) {
	out, err := s.output(ctx, []string{"rev-parse", "--verify", "-q", "--symbolic-full-name", expr})
	if err != nil {
		return "", false
	}
	full := strings.TrimSpace(string(out))
	return full, full != ""
}

// AncestryPathWithParents lists the commits on the ancestry path
// lower..upper, each with its parent list in git order.
func (s *Source) AncestryPathWithParents(ctx context.Context, lower, upper string) ([]commitgraph.CommitParents, error) {
	args := []string{"log", "--format=%H %P", "--ancestry-path", lower + ".." + upper, "--"}
	s.opts.Logger.Debug("running git", "args", strings.Join(args, " "))
	r, err := gitexec.Pipe(ctx, s.opts.GitCommand, s.opts.RepoDir, args)
	if err != nil {
		return nil, err
	}
	res, err := parseLogParents(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return res, nil
}

// CommitRefs lists the names of all references pointing at commits, directly
// or through an annotated tag.
func (s *Source) CommitRefs(ctx context.Context) ([]string, error) {
	args := []string{"for-each-ref", "--format=%(refname) %(objecttype) %(*objecttype)"}
	r, err := gitexec.Pipe(ctx, s.opts.GitCommand, s.opts.RepoDir, args)
	if err != nil {
		return nil, err
	}
	res, err := parseCommitRefs(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return res, nil
}

// RefPatterns returns the multivalued whenmerged.<name>.pattern config
// values.
func (s *Source) RefPatterns(ctx context.Context, name string) ([]string, error) {
	key := "whenmerged." + name + ".pattern"
	out, err := s.output(ctx, []string{"config", "--get-all", "--null", key})
	if err != nil {
		return nil, errors.Errorf("there is no configuration setting for %q", key)
	}
	return splitNull(string(out)), nil
}

// DefaultAbbrev reads the whenmerged.abbrev config value. ok is false when it
// is unset.
func (s *Source) DefaultAbbrev(ctx context.Context) (int, bool) {
	out, err := s.outputQuiet(ctx, []string{"config", "--int", "whenmerged.abbrev"})
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Describe labels sha relative to a tag. ok is false when git describe has no
// answer, which is normal for untagged history.
func (s *Source) Describe(ctx context.Context, sha string, contains bool) (string, bool) {
	args := []string{"describe"}
	if contains {
		args = append(args, "--contains")
	}
	args = append(args, sha)
	out, err := s.outputQuiet(ctx, args)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// ShowLog shows the log of the merge commit, or of the whole merged branch.
func (s *Source) ShowLog(ctx context.Context, sha string, wholeBranch bool) error {
	args := []string{"--no-pager", "log"}
	if wholeBranch {
		args = append(args, "--topo-order", sha+"^1.."+sha)
	} else {
		args = append(args, "--no-walk", sha)
	}
	return gitexec.Interactive(ctx, s.opts.GitCommand, s.opts.RepoDir, args)
}

// ShowDiff shows the diff introduced by the merge commit.
func (s *Source) ShowDiff(ctx context.Context, sha string) error {
	args := []string{"--no-pager", "diff", sha + "^1.." + sha}
	return gitexec.Interactive(ctx, s.opts.GitCommand, s.opts.RepoDir, args)
}

// Visualize opens gitk on the merge commit, or on the merged branch range
// with the target commit selected.
func (s *Source) Visualize(ctx context.Context, sha string, target string, wholeBranch bool) error {
	var args []string
	if wholeBranch {
		args = []string{sha + "^1.." + sha, "--select-commit=" + target}
	} else {
		args = []string{"--all", "--select-commit=" + sha}
	}
	return gitexec.Interactive(ctx, s.opts.GitkCommand, s.opts.RepoDir, args)
}

func (s *Source) output(ctx context.Context, args []string) ([]byte, error) {
	s.opts.Logger.Debug("running git", "args", strings.Join(args, " "))
	return gitexec.Output(ctx, s.opts.GitCommand, s.opts.RepoDir, args)
}

func (s *Source) outputQuiet(ctx context.Context, args []string) ([]byte, error) {
	s.opts.Logger.Debug("running git", "args", strings.Join(args, " "))
	return gitexec.OutputQuiet(ctx, s.opts.GitCommand, s.opts.RepoDir, args)
}

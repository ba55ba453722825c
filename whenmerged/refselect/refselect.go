// Package refselect turns the user's branch arguments, ad hoc regexp
// patterns, and named configuration pattern groups into the concrete set of
// references to search.
package refselect

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
)

// Source is the slice of the version-control data source selection needs.
type Source interface {
	// SymbolicFullName resolves expr to a fully-qualified reference name,
	// e.g. "master" to "refs/heads/master". ok is false when expr is not a
	// reference at all.
	SymbolicFullName(ctx context.Context, expr string) (string, bool)

	// ResolveCommit resolves a revision expression to a full commit SHA.
	ResolveCommit(ctx context.Context, expr string) (string, error)

	// CommitRefs lists the names of all references that point at commits,
	// directly or through an annotated tag.
	CommitRefs(ctx context.Context) ([]string, error)

	// RefPatterns returns the configured pattern values for the named group.
	// It fails if the group is not configured.
	RefPatterns(ctx context.Context, name string) ([]string, error)
}

type Opts struct {
	// Branches are explicit branch/commit arguments.
	Branches []string

	// Patterns are ad hoc regexps matched against full reference names.
	Patterns []string

	// Names select configured pattern groups.
	Names []string
}

// Select produces the deduplicated, lexicographically sorted set of
// references to search. Pattern-selected references are unioned with the
// explicit arguments; if nothing was selected at all, HEAD is used. Malformed
// regexps are reported to diag and skipped.
func Select(ctx context.Context, src Source, diag io.Writer, opts Opts) ([]string, error) {
	var patterns []*regexp.Regexp

	for _, value := range opts.Patterns {
		re, err := regexp.Compile(value)
		if err != nil {
			fmt.Fprintf(diag, "Error compiling pattern %q; ignoring: %v\n", value, err)
			continue
		}
		patterns = append(patterns, re)
	}

	for _, name := range opts.Names {
		values, err := src.RefPatterns(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, value := range values {
			re, err := regexp.Compile(value)
			if err != nil {
				fmt.Fprintf(diag, "Error compiling branch pattern %q; ignoring: %v\n", value, err)
				continue
			}
			patterns = append(patterns, re)
		}
	}

	branches := map[string]bool{}

	if len(patterns) > 0 {
		refs, err := src.CommitRefs(ctx)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if matchesAny(ref, patterns) {
				branches[ref] = true
			}
		}
	}

	for _, branch := range opts.Branches {
		full, err := fullName(ctx, src, branch)
		if err != nil {
			return nil, err
		}
		branches[full] = true
	}

	if len(branches) == 0 {
		full, err := fullName(ctx, src, "HEAD")
		if err != nil {
			return nil, err
		}
		branches[full] = true
	}

	res := make([]string, 0, len(branches))
	for branch := range branches {
		res = append(res, branch)
	}
	sort.Strings(res)
	return res, nil
}

func matchesAny(refname string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(refname) {
			return true
		}
	}
	return false
}

// fullName qualifies branch to its full reference name. Arguments that are
// not references (raw SHAs, expressions like HEAD~3) are kept in their
// original spelling, after verifying they resolve to a commit.
func fullName(ctx context.Context, src Source, branch string) (string, error) {
	if full, ok := src.SymbolicFullName(ctx, branch); ok {
		return full, nil
	}
	if _, err := src.ResolveCommit(ctx, branch); err != nil {
		return "", err
	}
	return branch, nil
}

// Package commitgraph holds the bounded ancestry graph for one merge search:
// every commit reachable from the branch tip that has the target commit as an
// ancestor, mapped to its parents. Commits outside the bounded range are
// absent, which is how the search detects it has left the relevant history.
package commitgraph

import (
	"context"

	"github.com/pkg/errors"
)

// CommitParents is one record of the graph: a commit and its parents in git
// order. Parents[0] is the first parent, the mainline side of a merge.
type CommitParents struct {
	SHA     string
	Parents []string
}

// Source supplies the ancestry-path commit range lower..upper together with
// each commit's parent list. The production implementation shells out to git;
// tests supply fixture graphs.
type Source interface {
	AncestryPathWithParents(ctx context.Context, lower, upper string) ([]CommitParents, error)
}

type Graph struct {
	parents map[string][]string
}

// Build queries src for the ancestry path lower..upper and loads it into a
// fresh Graph. The graph is read-only afterwards.
func Build(ctx context.Context, src Source, lower, upper string) (*Graph, error) {
	commits, err := src.AncestryPathWithParents(ctx, lower, upper)
	if err != nil {
		return nil, err
	}
	s := &Graph{parents: make(map[string][]string, len(commits))}
	for _, c := range commits {
		s.parents[c.SHA] = c.Parents
	}
	return s, nil
}

// New builds a Graph directly from records. Used by tests and by callers that
// already hold the data.
func New(commits []CommitParents) *Graph {
	s := &Graph{parents: make(map[string][]string, len(commits))}
	for _, c := range commits {
		s.parents[c.SHA] = c.Parents
	}
	return s
}

func (s *Graph) Contains(sha string) bool {
	_, ok := s.parents[sha]
	return ok
}

// Parents returns the parent list of sha. A miss means sha is outside the
// bounded range, not that it does not exist.
func (s *Graph) Parents(sha string) ([]string, error) {
	par, ok := s.parents[sha]
	if !ok {
		return nil, errors.Errorf("commit %v not in ancestry graph", sha)
	}
	return par, nil
}

// FirstParentSpine returns start followed by the chain of first parents, for
// as long as the chain stays inside the graph. Returns nil if start itself is
// outside. The last element is the oldest mainline commit still inside the
// bounded range.
func (s *Graph) FirstParentSpine(start string) []string {
	var res []string
	commit := start
	for {
		parents, ok := s.parents[commit]
		if !ok {
			return res
		}
		res = append(res, commit)
		if len(parents) == 0 {
			return res
		}
		commit = parents[0]
	}
}

// Len returns the number of commits in the bounded range.
func (s *Graph) Len() int {
	return len(s.parents)
}

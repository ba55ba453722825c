package commitgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsAndParents(t *testing.T) {
	g := New([]CommitParents{
		{"c2", []string{"c1"}},
		{"c1", nil},
	})

	assert.True(t, g.Contains("c1"))
	assert.False(t, g.Contains("c0"))

	par, err := g.Parents("c2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"c1"}, par)

	_, err = g.Parents("c0")
	assert.Error(t, err)
}

func TestFirstParentSpineLinear(t *testing.T) {
	g := New([]CommitParents{
		{"c3", []string{"c2"}},
		{"c2", []string{"c1"}},
		{"c1", nil},
	})

	assert.Equal(t, []string{"c3", "c2", "c1"}, g.FirstParentSpine("c3"))
}

func TestFirstParentSpineStopsAtRangeBoundary(t *testing.T) {
	// c1's first parent c0 is outside the graph, the spine ends at c1.
	g := New([]CommitParents{
		{"c2", []string{"c1"}},
		{"c1", []string{"c0"}},
	})

	assert.Equal(t, []string{"c2", "c1"}, g.FirstParentSpine("c2"))
}

func TestFirstParentSpineFollowsMainlineOfMerges(t *testing.T) {
	g := New([]CommitParents{
		{"m", []string{"c2", "x"}},
		{"c2", []string{"c1"}},
		{"x", []string{"c1"}},
		{"c1", nil},
	})

	assert.Equal(t, []string{"m", "c2", "c1"}, g.FirstParentSpine("m"))
}

func TestFirstParentSpineStartOutside(t *testing.T) {
	g := New([]CommitParents{
		{"c1", nil},
	})

	assert.Nil(t, g.FirstParentSpine("c9"))
}

func TestFirstParentSpineRestartable(t *testing.T) {
	g := New([]CommitParents{
		{"c2", []string{"c1"}},
		{"c1", nil},
	})

	first := g.FirstParentSpine("c2")
	second := g.FirstParentSpine("c2")
	assert.Equal(t, first, second)
}

type fixtureSource struct {
	commits []CommitParents
	err     error

	gotLower string
	gotUpper string
}

func (s *fixtureSource) AncestryPathWithParents(ctx context.Context, lower, upper string) ([]CommitParents, error) {
	s.gotLower = lower
	s.gotUpper = upper
	return s.commits, s.err
}

func TestBuild(t *testing.T) {
	src := &fixtureSource{commits: []CommitParents{
		{"c2", []string{"c1"}},
		{"c1", nil},
	}}

	g, err := Build(context.Background(), src, "c1", "c2")
	assert.NoError(t, err)
	assert.Equal(t, "c1", src.gotLower)
	assert.Equal(t, "c2", src.gotUpper)
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Contains("c2"))
}

func TestBuildPropagatesSourceError(t *testing.T) {
	src := &fixtureSource{err: assert.AnError}

	_, err := Build(context.Background(), src, "c1", "c2")
	assert.Error(t, err)
}

package refselect

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	fullNames map[string]string
	commits   map[string]bool
	refs      []string
	patterns  map[string][]string
}

func (s *fakeSource) SymbolicFullName(ctx context.Context, expr string) (string, bool) {
	full, ok := s.fullNames[expr]
	return full, ok
}

func (s *fakeSource) ResolveCommit(ctx context.Context, expr string) (string, error) {
	if s.commits[expr] {
		return expr, nil
	}
	return "", errors.Errorf("%q is not a valid commit", expr)
}

func (s *fakeSource) CommitRefs(ctx context.Context) ([]string, error) {
	return s.refs, nil
}

func (s *fakeSource) RefPatterns(ctx context.Context, name string) ([]string, error) {
	values, ok := s.patterns[name]
	if !ok {
		return nil, errors.Errorf("no configuration setting for %q", "whenmerged."+name+".pattern")
	}
	return values, nil
}

func TestExplicitBranchesQualifiedAndSorted(t *testing.T) {
	src := &fakeSource{
		fullNames: map[string]string{
			"master": "refs/heads/master",
			"maint":  "refs/heads/maint",
		},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Branches: []string{"master", "maint"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/maint", "refs/heads/master"}, got)
}

func TestNonRefArgumentKeptVerbatim(t *testing.T) {
	src := &fakeSource{
		commits: map[string]bool{"HEAD~3": true},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Branches: []string{"HEAD~3"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"HEAD~3"}, got)
}

func TestInvalidArgumentFails(t *testing.T) {
	src := &fakeSource{}

	_, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Branches: []string{"nosuch"},
	})
	assert.Error(t, err)
}

func TestDefaultsToHead(t *testing.T) {
	src := &fakeSource{
		fullNames: map[string]string{"HEAD": "refs/heads/master"},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/master"}, got)
}

func TestPatternSelection(t *testing.T) {
	src := &fakeSource{
		refs: []string{
			"refs/heads/master",
			"refs/heads/feature-1",
			"refs/tags/release-1.0",
			"refs/tags/v2",
		},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Patterns: []string{`^refs/tags/release-`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/tags/release-1.0"}, got)
}

func TestPatternsUnionWithExplicitBranches(t *testing.T) {
	src := &fakeSource{
		fullNames: map[string]string{"maint": "refs/heads/maint"},
		refs:      []string{"refs/heads/master", "refs/heads/maint"},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Branches: []string{"maint"},
		Patterns: []string{`master$`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/maint", "refs/heads/master"}, got)
}

func TestDeduplicates(t *testing.T) {
	src := &fakeSource{
		fullNames: map[string]string{"master": "refs/heads/master"},
		refs:      []string{"refs/heads/master"},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Branches: []string{"master"},
		Patterns: []string{`master`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/master"}, got)
}

func TestMalformedPatternSkippedWithDiagnostic(t *testing.T) {
	src := &fakeSource{
		fullNames: map[string]string{"HEAD": "refs/heads/master"},
		refs:      []string{"refs/heads/master"},
	}
	diag := &bytes.Buffer{}

	// The only pattern is malformed, so pattern selection contributes
	// nothing and the selection falls back to HEAD.
	got, err := Select(context.Background(), src, diag, Opts{
		Patterns: []string{`(unclosed`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/master"}, got)
	assert.Contains(t, diag.String(), `Error compiling pattern "(unclosed"; ignoring:`)
}

func TestNamedConfigPatterns(t *testing.T) {
	src := &fakeSource{
		refs: []string{
			"refs/heads/master",
			"refs/heads/maint",
			"refs/heads/topic",
		},
		patterns: map[string][]string{
			"default": {`^refs/heads/master$`, `^refs/heads/maint$`},
		},
	}

	got, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Names: []string{"default"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/maint", "refs/heads/master"}, got)
}

func TestMissingNamedPatternFails(t *testing.T) {
	src := &fakeSource{}

	_, err := Select(context.Background(), src, &bytes.Buffer{}, Opts{
		Names: []string{"releases"},
	})
	assert.Error(t, err)
}

func TestMalformedConfigPatternSkipped(t *testing.T) {
	src := &fakeSource{
		refs: []string{"refs/heads/master"},
		patterns: map[string][]string{
			"default": {`[bad`, `^refs/heads/master$`},
		},
	}
	diag := &bytes.Buffer{}

	got, err := Select(context.Background(), src, diag, Opts{
		Names: []string{"default"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"refs/heads/master"}, got)
	assert.Contains(t, diag.String(), `Error compiling branch pattern "[bad"; ignoring:`)
}

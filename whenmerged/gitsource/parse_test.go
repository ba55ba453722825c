package gitsource

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhagger/git-when-merged/whenmerged/commitgraph"
)

func TestParseLogParents(t *testing.T) {
	data := `f82b3491fbf1e4fd5666748efe0b198b82d587be 2fbc9d8afd98d677074ab2dc77658dbc2988e853 b7f8fa5c1794de8c7c36b61ba5e7e41e647ae97a
d497eccaf64c229771f471386cf49e4f653a00cb e99cb00954f08c1d33c5935742809868335483bf
e99cb00954f08c1d33c5935742809868335483bf
`

	got, err := parseLogParents(strings.NewReader(data))
	assert.NoError(t, err)
	want := []commitgraph.CommitParents{
		{SHA: "f82b3491fbf1e4fd5666748efe0b198b82d587be", Parents: []string{
			"2fbc9d8afd98d677074ab2dc77658dbc2988e853",
			"b7f8fa5c1794de8c7c36b61ba5e7e41e647ae97a"}},
		{SHA: "d497eccaf64c229771f471386cf49e4f653a00cb", Parents: []string{
			"e99cb00954f08c1d33c5935742809868335483bf"}},
		{SHA: "e99cb00954f08c1d33c5935742809868335483bf", Parents: nil},
	}
	assert.Equal(t, want, got)
}

func TestParseLogParentsWideOctopusMerge(t *testing.T) {
	// 4000 parents on one line overflows bufio.Scanner's default line limit.
	parents := make([]string, 4000)
	for i := range parents {
		parents[i] = fmt.Sprintf("%040d", i)
	}
	sha := "f82b3491fbf1e4fd5666748efe0b198b82d587be"
	data := sha + " " + strings.Join(parents, " ") + "\n"

	got, err := parseLogParents(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, sha, got[0].SHA)
	assert.Equal(t, parents, got[0].Parents)
}

func TestParseLogParentsEmpty(t *testing.T) {
	got, err := parseLogParents(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCommitRefs(t *testing.T) {
	data := `refs/heads/master commit
refs/tags/v1.0 tag commit
refs/tags/tree-tag tag tree
refs/tags/blob-tag blob
refs/remotes/origin/master commit
`

	got, err := parseCommitRefs(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"refs/heads/master",
		"refs/tags/v1.0",
		"refs/remotes/origin/master",
	}, got)
}

func TestSplitNull(t *testing.T) {
	assert.Equal(t,
		[]string{"^refs/heads/master$", "^refs/heads/maint$"},
		splitNull("^refs/heads/master$\x00^refs/heads/maint$\x00"))
	assert.Empty(t, splitNull(""))
	assert.Empty(t, splitNull("\x00"))
}

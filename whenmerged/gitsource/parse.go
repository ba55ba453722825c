package gitsource

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mhagger/git-when-merged/whenmerged/commitgraph"
)

// parseLogParents reads "git log --format=%H %P" output: one commit per line,
// the SHA followed by zero or more parent SHAs.
func parseLogParents(r io.Reader) ([]commitgraph.CommitParents, error) {
	var res []commitgraph.CommitParents
	scanner := bufio.NewScanner(r)
	// An octopus merge puts all parents on one line; the default 64KiB line
	// limit would cut off around 1600 of them.
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		c := commitgraph.CommitParents{SHA: words[0]}
		if len(words) > 1 {
			c.Parents = words[1:]
		}
		res = append(res, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read git log output")
	}
	return res, nil
}

// parseCommitRefs reads "git for-each-ref --format=%(refname) %(objecttype)
// %(*objecttype)" output and keeps the names of references that peel to
// commits: plain commit refs and annotated tags of commits.
func parseCommitRefs(r io.Reader) ([]string, error) {
	var res []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words := strings.Fields(scanner.Text())
		if len(words) < 2 {
			continue
		}
		refname, objtypes := words[0], words[1:]
		if isCommitRef(objtypes) {
			res = append(res, refname)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read git for-each-ref output")
	}
	return res, nil
}

func isCommitRef(objtypes []string) bool {
	if len(objtypes) == 1 {
		return objtypes[0] == "commit"
	}
	return len(objtypes) == 2 && objtypes[0] == "tag" && objtypes[1] == "commit"
}

// splitNull splits NUL-separated git config output, dropping empty entries.
func splitNull(out string) []string {
	var res []string
	for _, value := range strings.Split(out, "\x00") {
		if value != "" {
			res = append(res, value)
		}
	}
	return res
}

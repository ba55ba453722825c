// Package namer resolves commit SHAs to the form chosen by the user: the raw
// SHA, an unambiguous abbreviation, or a git-describe style label.
package namer

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Mode int

const (
	// Raw reports the full SHA unchanged.
	Raw Mode = iota
	// Short abbreviates the SHA, lengthening as needed to stay unique.
	Short
	// Describe labels the commit by the most recent reachable tag.
	Describe
	// DescribeContains labels the commit by a nearby tag containing it.
	DescribeContains
)

// Source is the slice of the version-control data source naming needs.
type Source interface {
	// AbbrevCommit abbreviates sha to at least length characters.
	AbbrevCommit(ctx context.Context, sha string, length int) (string, error)

	// Describe produces a tag-relative label for sha. ok is false when no
	// suitable tag exists.
	Describe(ctx context.Context, sha string, contains bool) (string, bool)
}

type Opts struct {
	Source Source
	Mode   Mode

	// Abbrev is the abbreviation length for the Short mode.
	Abbrev int

	// CacheSize bounds the result cache. Zero means a default size.
	CacheSize int
}

// Namer caches results: recursive searches across many branches can land on
// the same merge commits, and each resolution costs a subprocess.
type Namer struct {
	opts  Opts
	cache *lru.Cache[string, string]
}

func New(opts Opts) *Namer {
	if opts.CacheSize == 0 {
		opts.CacheSize = 512
	}
	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		panic(err)
	}
	s := &Namer{}
	s.opts = opts
	s.cache = cache
	return s
}

// Name resolves sha according to the configured mode. Describe modes fall
// back to the raw SHA when git cannot describe the commit; abbreviation
// failures are data-source errors and propagate.
func (s *Namer) Name(ctx context.Context, sha string) (string, error) {
	key := fmt.Sprintf("%v:%v:%v", s.opts.Mode, s.opts.Abbrev, sha)
	if name, ok := s.cache.Get(key); ok {
		return name, nil
	}
	name, err := s.resolve(ctx, sha)
	if err != nil {
		return "", err
	}
	s.cache.Add(key, name)
	return name, nil
}

func (s *Namer) resolve(ctx context.Context, sha string) (string, error) {
	switch s.opts.Mode {
	case Describe:
		if name, ok := s.opts.Source.Describe(ctx, sha, false); ok {
			return name, nil
		}
		return sha, nil
	case DescribeContains:
		if name, ok := s.opts.Source.Describe(ctx, sha, true); ok {
			return name, nil
		}
		return sha, nil
	case Short:
		return s.opts.Source.AbbrevCommit(ctx, sha, s.opts.Abbrev)
	default:
		return sha, nil
	}
}

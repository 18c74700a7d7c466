// Package vcs reads zone sources out of a git repository so the compiler builds
// exactly what a push delivered, not whatever happens to be lying around a working
// tree. It wraps go-git behind the few operations zc needs: resolve a revision, read
// files from a commit's tree and list what changed between two commits.
package vcs

import (
	"fmt"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is an open repository handle.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository at dir, which may name a bare repository, a work tree, or
// any directory inside one.
func Open(dir string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("cannot open git repository '%s': %w", dir, err)
	}

	return &Repo{repo: r}, nil
}

// Head returns the commit id the repository currently points at.
func (t *Repo) Head() (string, error) {
	ref, err := t.repo.Head()
	if err != nil {
		return "", err
	}

	return ref.Hash().String(), nil
}

// ResolveCommit turns any revision git understands (hash, branch, tag, HEAD~2 and
// friends) into the commit it names.
func (t *Repo) ResolveCommit(rev string) (*Commit, error) {
	hash, err := t.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve revision '%s': %w", rev, err)
	}
	c, err := t.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("'%s' does not name a commit: %w", rev, err)
	}

	return &Commit{commit: c}, nil
}

// Commit is one resolved commit.
type Commit struct {
	commit *object.Commit
}

// Hash returns the full commit id. It doubles as the handoff transaction token.
func (t *Commit) Hash() string {
	return t.commit.Hash.String()
}

// Opener returns a file reader rooted in this commit's tree. It satisfies the
// compiler's Opener contract, so $INCLUDE resolution also stays inside the commit.
func (t *Commit) Opener() *TreeOpener {
	return &TreeOpener{commit: t.commit}
}

// TreeOpener reads named files out of one commit's tree. Names are slash-separated
// paths relative to the repository root, exactly as git stores them.
type TreeOpener struct {
	commit *object.Commit
}

func (t *TreeOpener) Open(name string) (string, error) {
	f, err := t.commit.File(name)
	if err != nil {
		return "", fmt.Errorf("'%s' is not in commit %s: %w",
			name, t.commit.Hash.String()[:12], err)
	}

	return f.Contents()
}

// ChangedFiles lists the paths which differ between from and to, sorted and
// de-duplicated, with renames reported under both names. A nil from means everything
// in to is new, which is what a push creating a branch looks like.
func ChangedFiles(from, to *Commit) ([]string, error) {
	toTree, err := to.commit.Tree()
	if err != nil {
		return nil, err
	}

	var names []string
	if from == nil {
		err = toTree.Files().ForEach(func(f *object.File) error {
			names = append(names, f.Name)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		fromTree, err := from.commit.Tree()
		if err != nil {
			return nil, err
		}
		changes, err := object.DiffTree(fromTree, toTree)
		if err != nil {
			return nil, err
		}
		for _, ch := range changes {
			if len(ch.From.Name) > 0 {
				names = append(names, ch.From.Name)
			}
			if len(ch.To.Name) > 0 && ch.To.Name != ch.From.Name {
				names = append(names, ch.To.Name)
			}
		}
	}

	sort.Strings(names)
	uniq := names[:0]
	for _, n := range names {
		if len(uniq) == 0 || uniq[len(uniq)-1] != n {
			uniq = append(uniq, n)
		}
	}

	return uniq, nil
}

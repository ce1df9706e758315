package backend

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type native struct {
	path string
	repo *gitlib.Repository
}

// OpenNative opens the repository rooted at root with go-git.
func OpenNative(root string) (Backend, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	repo, err := gitlib.PlainOpenWithOptions(root, &gitlib.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &native{path: root, repo: repo}, nil
}

func (n *native) RepoPath() string {
	if n == nil {
		return ""
	}
	return n.path
}

func (n *native) HeadState() (hash string, headName string, ok bool, err error) {
	ref, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("resolve HEAD: %w", err)
	}
	headName = "HEAD"
	if ref.Name().IsBranch() {
		headName = ref.Name().Short()
	}
	return ref.Hash().String(), headName, true, nil
}

func (n *native) headCommit() (*object.Commit, error) {
	ref, err := n.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := n.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return commit, nil
}

func (n *native) Blame(relPath string) ([]Span, error) {
	head, err := n.headCommit()
	if err != nil {
		return nil, err
	}
	result, err := gitlib.Blame(head, relPath)
	if err != nil {
		return nil, fmt.Errorf("blame %s: %w", relPath, err)
	}
	commits := map[plumbing.Hash]*object.Commit{}
	var spans []Span
	for _, line := range result.Lines {
		if len(spans) > 0 && spans[len(spans)-1].CommitID == line.Hash.String() {
			spans[len(spans)-1].Lines++
			continue
		}
		commit, ok := commits[line.Hash]
		if !ok {
			commit, err = n.repo.CommitObject(line.Hash)
			if err != nil {
				return nil, fmt.Errorf("read commit %s: %w", line.Hash, err)
			}
			commits[line.Hash] = commit
		}
		spans = append(spans, Span{
			CommitID: line.Hash.String(),
			Author:   signature(commit.Author),
			Message:  commit.Message,
			Lines:    1,
		})
	}
	return spans, nil
}

func (n *native) FileLog(relPath string, limit int) ([]Commit, error) {
	ref, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	opts := &gitlib.LogOptions{From: ref.Hash(), Order: gitlib.LogOrderCommitterTime}
	if relPath != "" {
		opts.FileName = &relPath
	}
	iter, err := n.repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}
	defer iter.Close()

	var commits []Commit
	for limit <= 0 || len(commits) < limit {
		c, err := iter.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("iterate commits: %w", err)
		}
		commits = append(commits, toCommit(c))
	}
	return commits, nil
}

func (n *native) Branches() ([]Branch, error) {
	refs, err := n.repo.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()

	var headName plumbing.ReferenceName
	if head, err := n.repo.Head(); err == nil {
		headName = head.Name()
	}
	cfg, err := n.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var branches []Branch
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			b := Branch{
				Name:   name.Short(),
				Tip:    ref.Hash().String(),
				IsHead: name == headName,
			}
			if tracked, ok := cfg.Branches[b.Name]; ok && tracked.Remote != "" && tracked.Merge != "" {
				b.Upstream = tracked.Remote + "/" + tracked.Merge.Short()
			}
			branches = append(branches, b)
		case name.IsRemote():
			short := name.Short()
			if strings.HasSuffix(short, "/HEAD") {
				return nil
			}
			branches = append(branches, Branch{Name: short, Tip: ref.Hash().String(), IsRemote: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (n *native) Close() error {
	if n == nil || n.repo == nil {
		return nil
	}
	if closer, ok := n.repo.Storer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func signature(sig object.Signature) Signature {
	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

func toCommit(c *object.Commit) Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	committer := c.Committer
	if committer.Name == "" && committer.Email == "" && committer.When.IsZero() {
		committer = c.Author
	}
	return Commit{
		Hash:         c.Hash.String(),
		ParentHashes: parents,
		Author:       signature(c.Author),
		Committer:    signature(committer),
		Message:      c.Message,
	}
}

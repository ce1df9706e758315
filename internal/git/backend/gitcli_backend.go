package backend

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	fieldSep  = "\x00"
	recordSep = "\x1e"

	// showBatch bounds the number of revisions passed to a single git show.
	showBatch = 200
)

func (g *gitCLI) HeadState() (hash string, headName string, ok bool, err error) {
	if g == nil || g.path == "" {
		return "", "", false, fmt.Errorf("repository root not set")
	}
	out, err := g.runGitCommand([]string{"rev-parse", "-q", "--verify", "HEAD"}, true, "git rev-parse")
	if err != nil {
		return "", "", false, err
	}
	hash = strings.TrimSpace(out)
	if hash == "" {
		return "", "", false, nil
	}
	ref, err := g.runGitCommand([]string{"symbolic-ref", "-q", "--short", "HEAD"}, true, "git symbolic-ref")
	if err != nil {
		return "", "", false, err
	}
	headName = strings.TrimSpace(ref)
	if headName == "" {
		headName = "HEAD"
	}
	return hash, headName, true, nil
}

func (g *gitCLI) Blame(relPath string) ([]Span, error) {
	if strings.TrimSpace(relPath) == "" {
		return nil, fmt.Errorf("path not specified")
	}
	out, err := g.runGitCommand([]string{"blame", "--porcelain", "HEAD", "--", relPath}, false, "git blame")
	if err != nil {
		return nil, err
	}
	lines, meta, err := parseBlamePorcelain(strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse git blame: %w", err)
	}
	messages, err := g.commitMessages(uniqueHashes(lines))
	if err != nil {
		return nil, err
	}
	spans := spansFromLines(lines, meta)
	for i := range spans {
		if msg, ok := messages[spans[i].CommitID]; ok {
			spans[i].Message = msg
		}
	}
	return spans, nil
}

// commitMessages returns the full message of each commit, keyed by hash.
func (g *gitCLI) commitMessages(hashes []string) (map[string]string, error) {
	messages := make(map[string]string, len(hashes))
	for start := 0; start < len(hashes); start += showBatch {
		end := min(start+showBatch, len(hashes))
		args := append([]string{"show", "-s", "--no-color", "--format=%H%x00%B%x1e"}, hashes[start:end]...)
		out, err := g.runGitCommand(args, false, "git show")
		if err != nil {
			return nil, err
		}
		for _, record := range strings.Split(out, recordSep) {
			record = strings.TrimLeft(record, "\n")
			hash, message, ok := strings.Cut(record, fieldSep)
			if !ok {
				continue
			}
			messages[hash] = message
		}
	}
	return messages, nil
}

func (g *gitCLI) FileLog(relPath string, limit int) ([]Commit, error) {
	_, _, ok, err := g.HeadState()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	args := []string{"log", "--no-color", "--format=%H%x00%P%x00%an%x00%ae%x00%at%x00%cn%x00%ce%x00%ct%x00%B%x1e"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("--max-count=%d", limit))
	}
	args = append(args, "HEAD")
	if relPath != "" {
		args = append(args, "--", relPath)
	}
	out, err := g.runGitCommand(args, false, "git log")
	if err != nil {
		return nil, err
	}
	return parseLogRecords(out)
}

func (g *gitCLI) Branches() ([]Branch, error) {
	out, err := g.runGitCommand(
		[]string{
			"for-each-ref",
			"--format=%(refname)%00%(objectname)%00%(HEAD)%00%(upstream:short)",
			"refs/heads",
			"refs/remotes",
		},
		false,
		"git for-each-ref",
	)
	if err != nil {
		return nil, err
	}
	return parseForEachRef(out)
}

type porcelainCommit struct {
	author Signature
	tz     string
}

// parseBlamePorcelain returns the commit hash of every line, in order, and the
// author metadata of each commit seen.
func parseBlamePorcelain(r io.Reader) ([]string, map[string]*porcelainCommit, error) {
	var lines []string
	meta := map[string]*porcelainCommit{}
	var current string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "\t") {
			if current == "" {
				return nil, nil, fmt.Errorf("content line before header")
			}
			lines = append(lines, current)
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		if isHexHash(key) {
			fields := strings.Fields(value)
			if len(fields) < 2 {
				return nil, nil, fmt.Errorf("unexpected blame header: %q", line)
			}
			current = key
			if _, ok := meta[current]; !ok {
				meta[current] = &porcelainCommit{}
			}
			continue
		}
		if current == "" {
			return nil, nil, fmt.Errorf("unexpected blame line: %q", line)
		}
		c := meta[current]
		switch key {
		case "author":
			c.author.Name = value
		case "author-mail":
			c.author.Email = strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
		case "author-time":
			secs, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("author-time %q: %w", value, err)
			}
			c.author.When = time.Unix(secs, 0)
		case "author-tz":
			c.tz = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	for _, c := range meta {
		if loc := parseTZ(c.tz); loc != nil && !c.author.When.IsZero() {
			c.author.When = c.author.When.In(loc)
		}
	}
	return lines, meta, nil
}

func spansFromLines(lines []string, meta map[string]*porcelainCommit) []Span {
	var spans []Span
	for _, hash := range lines {
		if len(spans) > 0 && spans[len(spans)-1].CommitID == hash {
			spans[len(spans)-1].Lines++
			continue
		}
		span := Span{CommitID: hash, Lines: 1}
		if c, ok := meta[hash]; ok {
			span.Author = c.author
		}
		spans = append(spans, span)
	}
	return spans
}

func uniqueHashes(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	var hashes []string
	for _, h := range lines {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		hashes = append(hashes, h)
	}
	return hashes
}

func isHexHash(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// parseTZ parses git's "+hhmm" offsets.
func parseTZ(tz string) *time.Location {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil
	}
	offset := hours*3600 + minutes*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset)
}

func parseLogRecords(out string) ([]Commit, error) {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 9)
		if len(fields) != 9 {
			return nil, fmt.Errorf("unexpected git log record: %q", record)
		}
		authorTime, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("author time %q: %w", fields[4], err)
		}
		committerTime, err := strconv.ParseInt(fields[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("committer time %q: %w", fields[7], err)
		}
		commits = append(commits, Commit{
			Hash:         fields[0],
			ParentHashes: strings.Fields(fields[1]),
			Author:       Signature{Name: fields[2], Email: fields[3], When: time.Unix(authorTime, 0)},
			Committer:    Signature{Name: fields[5], Email: fields[6], When: time.Unix(committerTime, 0)},
			Message:      fields[8],
		})
	}
	return commits, nil
}

func parseForEachRef(out string) ([]Branch, error) {
	var branches []Branch
	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, fieldSep)
		if len(fields) != 4 {
			return nil, fmt.Errorf("unexpected for-each-ref output line: %q", rawLine)
		}
		refName, hash := fields[0], fields[1]
		switch {
		case strings.HasPrefix(refName, "refs/heads/"):
			short := strings.TrimPrefix(refName, "refs/heads/")
			if short == "" {
				continue
			}
			branches = append(branches, Branch{
				Name:     short,
				Tip:      hash,
				IsHead:   fields[2] == "*",
				Upstream: fields[3],
			})
		case strings.HasPrefix(refName, "refs/remotes/"):
			short := strings.TrimPrefix(refName, "refs/remotes/")
			if short == "" || strings.HasSuffix(short, "/HEAD") {
				continue
			}
			branches = append(branches, Branch{Name: short, Tip: hash, IsRemote: true})
		}
	}
	return branches, nil
}

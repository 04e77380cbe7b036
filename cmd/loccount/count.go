package main

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats is the per-file or aggregated line breakdown.
type Stats struct {
	Total   int
	Empty   int
	Comment int
	Code    int
}

func (s *Stats) add(o Stats) {
	s.Total += o.Total
	s.Empty += o.Empty
	s.Comment += o.Comment
	s.Code += o.Code
}

// ClassifyLines splits line content into empty, comment and code counts.
// Only whole-line comments count; trailing comments stay code.
func ClassifyLines(lines []string) Stats {
	st := Stats{Total: len(lines)}
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			st.Empty++
		case strings.HasPrefix(stripped, "#"),
			strings.HasPrefix(stripped, "//"),
			strings.HasPrefix(stripped, "/*"),
			strings.HasPrefix(stripped, "*"),
			strings.HasPrefix(stripped, "*/"):
			st.Comment++
		default:
			st.Code++
		}
	}
	return st
}

func analyzeFile(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Stats{}, err
	}
	return ClassifyLines(lines), nil
}

// node is one directory or file in the report tree.
type node struct {
	name     string
	isFile   bool
	children map[string]*node
	stats    Stats
}

func newNode(name string, isFile bool) *node {
	return &node{name: name, isFile: isFile, children: map[string]*node{}}
}

func (n *node) insert(parts []string, st Stats) {
	if len(parts) == 0 {
		return
	}
	name := parts[0]
	child, ok := n.children[name]
	if !ok {
		child = newNode(name, len(parts) == 1)
		n.children[name] = child
	}
	if len(parts) == 1 {
		child.stats = st
		return
	}
	child.insert(parts[1:], st)
}

// totals recomputes directory aggregates bottom-up.
func (n *node) totals() Stats {
	if n.isFile {
		return n.stats
	}
	n.stats = Stats{}
	for _, c := range sortedChildren(n) {
		n.stats.add(c.totals())
	}
	return n.stats
}

func sortedChildren(n *node) []*node {
	out := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		// directories before files, then by name
		if out[i].isFile != out[j].isFile {
			return !out[i].isFile
		}
		return out[i].name < out[j].name
	})
	return out
}

// collect walks root and returns relative paths of matching files.
func collect(root string, excludeDirs map[string]bool, exts map[string]bool) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if excludeDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(exts) > 0 && !exts[filepath.Ext(path)] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

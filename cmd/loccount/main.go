// Command loccount prints a line-count report for a source tree: total,
// code, comment and empty lines per directory, optionally per file.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

func main() {
	verbose := flag.Bool("verbose", false, "list individual files, not just directories")
	exclude := flag.String("exclude", ".git,node_modules,vendor", "comma-separated directory names to skip")
	extList := flag.String("ext", "", "comma-separated file extensions to include (e.g. .go,.sql); empty means all")
	flag.Parse()

	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	excludeDirs := map[string]bool{}
	for _, d := range strings.Split(*exclude, ",") {
		if d = strings.TrimSpace(d); d != "" {
			excludeDirs[d] = true
		}
	}

	exts := map[string]bool{}
	for _, e := range strings.Split(*extList, ",") {
		if e = strings.TrimSpace(e); e != "" {
			exts[e] = true
		}
	}

	files, err := collect(root, excludeDirs, exts)
	if err != nil {
		log.Fatalf("walk %s: %v", root, err)
	}

	tree := newNode(filepath.Base(filepath.Clean(root)), false)
	for _, rel := range files {
		st, err := analyzeFile(filepath.Join(root, rel))
		if err != nil {
			// unreadable or binary file, skip it
			continue
		}
		tree.insert(strings.Split(rel, string(filepath.Separator)), st)
	}
	tree.totals()

	printNode(tree, "", *verbose)
}

func printNode(n *node, indent string, verbose bool) {
	if n.isFile && !verbose {
		return
	}
	fmt.Printf("%s%s: %d lines (%d code, %d comments, %d empty)\n",
		indent, n.name, n.stats.Total, n.stats.Code, n.stats.Comment, n.stats.Empty)
	for _, c := range sortedChildren(n) {
		printNode(c, indent+"  ", verbose)
	}
}

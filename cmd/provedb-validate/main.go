package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/provedb/provedb/internal/unit"
	"github.com/provedb/provedb/pkg"
)

// Validates unit files without serving them: loads each file given on
// the command line, prints its table sizes, and exits nonzero if any
// file fails to load.
func main() {
	quiet := flag.Bool("q", false, "only report failures")

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: provedb-validate [-q] file.xml ...")
		os.Exit(2)
	}

	pkg.SetLogLevel(pkg.LogLevelErrOnly)

	failed := 0
	for _, file := range flag.Args() {
		u, err := unit.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			failed += 1
			continue
		}

		if *quiet {
			continue
		}

		fmt.Printf("%s: unit %s\n", file, u.Name)
		stats := u.TableStats()
		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-45s %d\n", name, stats[name])
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// Command dbcgen reads a Vector .dbc file and writes a Go source file of
// zero-dependency decode/encode accessors, one per message/signal the
// source declares.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tegimeki/dbcgen/dbcfile"
	"github.com/tegimeki/dbcgen/emit"
	"github.com/tegimeki/dbcgen/planner"
)

func main() {
	dbcPath := flag.String("dbc", "", "path to the .dbc source file (required)")
	outPath := flag.String("out", "", "path to write generated Go source to (default: stdout)")
	pkgName := flag.String("package", "candata", "package name for the generated file")
	messagesRaw := flag.String("messages", "", "comma separated list of message names to generate (default: all)")
	signalsRaw := flag.String("signals", "", "comma separated list of signal names to generate, applied to every selected message (default: all)")
	verbose := flag.Bool("v", false, "log generator-time warnings to stderr")
	flag.Parse()

	if *dbcPath == "" {
		log.Fatal("# missing -dbc path to source file\n")
	}

	f, err := os.Open(*dbcPath)
	if err != nil {
		log.Fatalf("# failed to open %s: %v\n", *dbcPath, err)
	}
	defer f.Close()

	messages, warnings, err := dbcfile.Parse(f)
	if err != nil {
		log.Fatalf("# failed to parse %s: %v\n", *dbcPath, err)
	}
	if *verbose {
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "# %v\n", w)
		}
	}

	wantMessages := splitCSV(*messagesRaw)
	wantSignals := splitCSV(*signalsRaw)

	var plans []planner.AccessorPlan
	for _, msg := range messages {
		if len(wantMessages) > 0 && !contains(wantMessages, msg.Name) {
			continue
		}
		plan, planWarnings := planner.BuildPlan(msg, wantSignals...)
		if *verbose {
			for _, w := range planWarnings {
				fmt.Fprintf(os.Stderr, "# %v\n", w)
			}
		}
		plans = append(plans, plan)
	}
	if len(plans) == 0 {
		log.Fatal("# no messages selected for generation\n")
	}

	src, err := emit.Generate(*pkgName, plans)
	if err != nil {
		log.Fatalf("# failed to generate source: %v\n", err)
	}

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Fatalf("# failed to create %s: %v\n", *outPath, err)
		}
		defer out.Close()
	}
	if _, err := out.Write(src); err != nil {
		log.Fatalf("# failed to write generated source: %v\n", err)
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"

	"tally/cell"
	"tally/csvexport"
	"tally/file"
	"tally/repl"
	"tally/server"
	"tally/sheet"
)

func main() {
	log.SetLevel(log.WarnLevel)
	if os.Getenv("TALLY_DEBUG") != "" {
		log.SetLevel(log.TraceLevel)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
	case "repl":
		os.Exit(replCommand(os.Args[2:]))
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	case "export":
		os.Exit(exportCommand(os.Args[2:]))
	case "eval":
		os.Exit(evalCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Print(`tally - a terminal spreadsheet with formulas

usage:
  tally repl [file]                  interactive shell, optionally loading a sheet
  tally serve [addr] [file]          websocket sheet server (default :8090)
  tally export <file> <range> [out]  write a CSV view of a saved sheet
  tally eval <file>                  evaluate a saved sheet and print every cell
  tally help                         this text

set TALLY_DEBUG=1 for trace logging.
`)
}

func loadSheet(path string) (*sheet.Sheet, error) {
	if path == "" {
		return sheet.New(), nil
	}
	sources, err := file.Load(path)
	if err != nil {
		return nil, err
	}
	return sheet.FromSources(sources), nil
}

func replCommand(args []string) int {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	s, err := loadSheet(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	repl.Start(s, os.Stdin, os.Stdout)
	return 0
}

func serveCommand(args []string) int {
	addr := ":8090"
	path := ""
	if len(args) > 0 {
		addr = args[0]
	}
	if len(args) > 1 {
		path = args[1]
	}
	s, err := loadSheet(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	s.Evaluate()
	if err := server.New(s).ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func exportCommand(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tally export <file> <range> [out]")
		return 2
	}
	rng, err := cell.ParseRange(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	s, err := loadSheet(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	s.Evaluate()

	out := os.Stdout
	if len(args) > 2 {
		f, err := os.Create(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	if err := csvexport.Write(out, s, rng); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func evalCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: tally eval <file>")
		return 2
	}
	s, err := loadSheet(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	s.Evaluate()

	type entry struct {
		addr cell.Address
		src  string
	}
	entries := make([]entry, 0)
	for addr, src := range s.Sources() {
		entries = append(entries, entry{addr: addr, src: src})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].addr.Row != entries[j].addr.Row {
			return entries[i].addr.Row < entries[j].addr.Row
		}
		return entries[i].addr.Col < entries[j].addr.Col
	})
	for _, e := range entries {
		v, ok := s.Value(e.addr)
		if !ok {
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", e.addr, e.src, v.String())
	}
	return 0
}

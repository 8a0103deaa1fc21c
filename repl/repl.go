// Package repl is an interactive shell over a sheet: edit cells, inspect
// computed values, render ranges and move sheets to and from disk. Every
// mutation triggers an evaluation round before the next prompt.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"tally/cell"
	"tally/csvexport"
	"tally/file"
	"tally/sheet"
)

const PROMPT = "tally> "

const columnWidth = 12

// Start runs the shell until quit or EOF. The sheet passed in is used as
// the session's working sheet; it is evaluated before the first prompt.
func Start(s *sheet.Sheet, in io.Reader, out io.Writer) {
	var (
		tty    *ttyInput
		reader *bufio.Scanner
	)
	if ti, ok := newTTYInput(in, out); ok {
		tty = ti
		defer tty.Close()
		out = newTTYLineWriter(out)
	} else {
		reader = bufio.NewScanner(in)
	}

	s.Evaluate()

	fmt.Fprintf(out, "tally interactive sheet\n")
	fmt.Fprintf(out, "commands: set, clear, get, show, save, load, export, help, quit\n\n")

	for {
		var (
			line string
			ok   bool
		)
		if tty != nil {
			line, ok = tty.readLine(PROMPT)
			if !ok {
				return
			}
		} else {
			fmt.Fprint(out, PROMPT)
			if !reader.Scan() {
				return
			}
			line = reader.Text()
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := runCommand(&s, line, out); quit {
			return
		}
	}
}

// runCommand executes one shell line against the sheet. It returns true
// when the session should end. The sheet pointer may be replaced by load.
func runCommand(s **sheet.Sheet, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true

	case "help":
		printHelp(out)

	case "set":
		if len(args) < 2 {
			fmt.Fprintf(out, "usage: set <addr> <source>\n")
			return false
		}
		addr, err := cell.ParseAddress(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		// Everything after the address, with original spacing.
		src := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len(cmd):]), args[0]))
		(*s).SetSource(addr, src)
		(*s).Evaluate()
		printCell(out, *s, addr)

	case "clear":
		if len(args) != 1 {
			fmt.Fprintf(out, "usage: clear <addr>\n")
			return false
		}
		addr, err := cell.ParseAddress(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		(*s).ClearSource(addr)
		(*s).Evaluate()

	case "get":
		if len(args) != 1 {
			fmt.Fprintf(out, "usage: get <addr>\n")
			return false
		}
		addr, err := cell.ParseAddress(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		printCell(out, *s, addr)

	case "show":
		if len(args) != 1 {
			fmt.Fprintf(out, "usage: show <range>\n")
			return false
		}
		rng, err := cell.ParseRange(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		printGrid(out, *s, rng)

	case "save":
		if len(args) != 1 {
			fmt.Fprintf(out, "usage: save <path>\n")
			return false
		}
		if err := file.Save(args[0], (*s).Sources()); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "saved %s\n", args[0])

	case "load":
		if len(args) != 1 {
			fmt.Fprintf(out, "usage: load <path>\n")
			return false
		}
		sources, err := file.Load(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		*s = sheet.FromSources(sources)
		(*s).Evaluate()
		fmt.Fprintf(out, "loaded %s (%d cells)\n", args[0], len(sources))

	case "export":
		if len(args) != 2 {
			fmt.Fprintf(out, "usage: export <path> <range>\n")
			return false
		}
		rng, err := cell.ParseRange(args[1])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		f, err := os.Create(args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		err = csvexport.Write(f, *s, rng)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "exported %s to %s\n", args[1], args[0])

	default:
		fmt.Fprintf(out, "unknown command %q; try help\n", cmd)
	}
	return false
}

func printCell(out io.Writer, s *sheet.Sheet, addr cell.Address) {
	v, ok := s.Value(addr)
	if !ok {
		fmt.Fprintf(out, "%s is empty\n", addr)
		return
	}
	fmt.Fprintf(out, "%s = %s\n", addr, v.String())
}

func printGrid(out io.Writer, s *sheet.Sheet, rng cell.Range) {
	for _, row := range rng.Rows() {
		var b strings.Builder
		for _, col := range rng.Cols() {
			v, ok := s.Value(cell.Address{Col: col, Row: row})
			if !ok {
				v = &cell.Empty{}
			}
			b.WriteString(cell.Pad(v, columnWidth))
			b.WriteByte(' ')
		}
		fmt.Fprintf(out, "%s\n", strings.TrimRight(b.String(), " "))
	}
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `set <addr> <source>    set a cell (prefix = for a formula, \ to escape)
clear <addr>           remove a cell
get <addr>             print one computed value
show <range>           print a grid of computed values, e.g. show A0_D9
save <path>            write the sheet to disk
load <path>            replace the sheet with one from disk
export <path> <range>  write a CSV view of the range
quit                   leave
`)
}

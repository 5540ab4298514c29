// cmd/quanta/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/mattn/go-isatty"

	"quanta/internal/diag"
	"quanta/internal/dump"
	"quanta/internal/replcli"
	"quanta/internal/workbook"
	"quanta/internal/wsserver"
)

func main() { os.Exit(run()) }

// run is split out from main so the cmd/quanta testscript suite can
// register it under testscript.RunMain and drive the built behavior
// as a subprocess without a real go build step.
func run() int {
	file := flag.String("file", "", "evaluate a workbook file top-to-bottom and exit")
	serve := flag.String("serve", "", "run a websocket notebook server on this address (e.g. :8080)")
	maxConns := flag.Int64("max-conns", 64, "maximum concurrently accepted -serve connections")
	dumpCell := flag.String("dump", "", "print the AST and Chunk for a single cell and exit")
	flag.Parse()
	defer glog.Flush()

	switch {
	case *dumpCell != "":
		return runDump(*dumpCell)
	case *file != "":
		return runFile(*file)
	case *serve != "":
		return runServe(*serve, *maxConns)
	default:
		return runREPL()
	}
}

func runDump(cellText string) int {
	if err := dump.Cell(os.Stdout, cellText); err != nil {
		fmt.Fprintf(os.Stderr, "quanta: %v\n", err)
		return 1
	}
	return 0
}

func runFile(path string) int {
	wb, err := workbook.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quanta: %v\n", err)
		return 1
	}
	fmt.Printf("# %s (%s)\n", path, wb.HumanSize())
	lines, err := wb.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "quanta: %v\n", err)
		return 1
	}
	tty := isatty.IsTerminal(os.Stdout.Fd())
	for _, line := range lines {
		if line.Display == "" {
			fmt.Println(line.Text)
			continue
		}
		cell := line.Text
		if tty {
			cell = replcli.Highlight(cell)
		}
		fmt.Printf("> %s\n%s\n", cell, line.Display)
		if len(line.Diagnostics) > 0 {
			fmt.Print(diag.Render(line.Diagnostics))
		}
	}
	return 0
}

func runServe(addr string, maxConns int64) int {
	srv := wsserver.New(maxConns)
	glog.Infof("quanta: notebook server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		fmt.Fprintf(os.Stderr, "quanta: %v\n", err)
		return 1
	}
	return 0
}

func runREPL() int {
	r := replcli.NewForFile(os.Stdout, os.Stdout.Fd())
	r.Start(os.Stdin)
	return 0
}

// cmd/graphcalc/main.go — sample relations from the command line
//
// Usage:
//
//	go run ./cmd/graphcalc -eq "x^2 + y^2 = 25" -eq "y = sin(x)" -o out.png
//	go run ./cmd/graphcalc -domain -20,20 -export plot.svg -eq "y = x!"
//	go run ./cmd/graphcalc -repl
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/njchilds90/graphcalc"
)

type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, "; ") }
func (m *multiFlag) Set(s string) error { *m = append(*m, s); return nil }

type options struct {
	cfg           graphcalc.Config
	eqs           multiFlag
	out           string
	export        string
	repl          bool
	verbose       bool
	width, height int
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	o := options{cfg: graphcalc.DefaultConfig()}
	fs := flag.NewFlagSet("graphcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o.cfg.RegisterFlags(fs)
	fs.Var(&o.eqs, "eq", "relation to plot, repeatable (default: the demo relations)")
	fs.StringVar(&o.out, "o", "", "write a PNG preview to this file")
	fs.StringVar(&o.export, "export", "", "export a plot; format from the extension (svg, pdf, png, eps)")
	fs.BoolVar(&o.repl, "repl", false, "start an interactive session")
	fs.BoolVar(&o.verbose, "v", false, "log engine internals at debug level")
	fs.IntVar(&o.width, "width", 800, "preview width in pixels")
	fs.IntVar(&o.height, "height", 600, "preview height in pixels")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if len(o.eqs) == 0 && !o.repl {
		o.eqs = multiFlag{graphcalc.SquareWave, graphcalc.UglyChaos}
	}
	return o, o.cfg.Validate()
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	graphcalc.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	eng, err := graphcalc.NewEngine(o.cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer eng.Close()

	s := newSession(eng, stdout, o.width, o.height)
	for _, eq := range o.eqs {
		if err := s.add(eq); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if o.repl {
		if err := runREPL(s); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	frame, err := s.frame(context.Background())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	s.summarize(frame)
	outputs := []struct {
		path  string
		write func(string) error
	}{{o.out, s.renderPNG}, {o.export, s.export}}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := out.write(out.path); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", out.path)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

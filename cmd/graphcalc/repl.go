package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/njchilds90/graphcalc"
	"github.com/njchilds90/graphcalc/render"
)

var errQuit = errors.New("quit")

const helpText = `relations:
  <text>                 add a relation, e.g. x^2 + y^2 = 25
commands:
  :domain MIN MAX        set the horizontal bounds
  :range MIN MAX         set the vertical bounds
  :scale SX [SY]         pixels per unit
  :pan DX DY             move the preview in pixels
  :reset                 recentre the preview
  :list                  list relations
  :edit ID TEXT          replace a relation
  :rm ID                 remove a relation
  :render FILE           write .png preview, or export .svg/.pdf/.eps
  :help
  :quit`

// session is the state shared by the one-shot CLI and the REPL.
type session struct {
	eng      *graphcalc.Engine
	palette  *render.Palette
	viewport render.Viewport
	out      io.Writer
}

func newSession(eng *graphcalc.Engine, out io.Writer, width, height int) *session {
	return &session{
		eng:      eng,
		palette:  render.NewPalette(),
		viewport: render.NewViewport(width, height, eng.Window()),
		out:      out,
	}
}

func (s *session) add(text string) error {
	rel, err := s.eng.Add(text, s.palette.Next())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "[%d] %s\n", rel.ID, rel)
	return nil
}

func (s *session) frame(ctx context.Context) (graphcalc.Frame, error) {
	frame, err := s.eng.Frame(ctx, true)
	if err != nil {
		return graphcalc.Frame{}, err
	}
	s.viewport.Window = frame.Window
	return frame, nil
}

func (s *session) summarize(frame graphcalc.Frame) {
	for _, fc := range frame.Curves {
		c := fc.Curve
		switch {
		case fc.Err != nil:
			fmt.Fprintf(s.out, "[%d] %s: %v\n", fc.Relation.ID, fc.Relation.Text, fc.Err)
		case c.LowResolution:
			fmt.Fprintf(s.out, "[%d] %s: %d points (low resolution)\n", fc.Relation.ID, fc.Relation.Text, len(c.Points))
		case c.Empty() && c.SawOutOfRange:
			fmt.Fprintf(s.out, "[%d] %s: outside the window\n", fc.Relation.ID, fc.Relation.Text)
		default:
			fmt.Fprintf(s.out, "[%d] %s: %d polylines in %s, %d samples\n",
				fc.Relation.ID, fc.Relation.Text, len(c.Polylines), c.Axis, c.SampleCount())
		}
	}
	if msg := graphcalc.FormatAdvisory(frame.Advisory); msg != "" {
		fmt.Fprintln(s.out, msg)
	}
}

func (s *session) renderPNG(path string) error {
	frame, err := s.frame(context.Background())
	if err != nil {
		return err
	}
	return render.NewRaster(s.viewport).SavePNG(path, frame)
}

func (s *session) export(path string) error {
	frame, err := s.frame(context.Background())
	if err != nil {
		return err
	}
	return render.Export(frame, path, render.ExportWidth, render.ExportHeight)
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d integers, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", a)
		}
		out[i] = v
	}
	return out, nil
}

// exec runs one REPL line. Relation text is added and sampled; lines
// starting with ':' are commands.
func (s *session) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		if err := s.add(line); err != nil {
			return err
		}
		return s.show(ctx)
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case ":quit", ":q":
		return errQuit
	case ":help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case ":domain", ":range":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s MIN MAX", cmd)
		}
		iv, err := graphcalc.ParseBounds(args[0], args[1])
		if err != nil {
			return err
		}
		w := s.eng.Window()
		if cmd == ":domain" {
			w.Domain = iv
		} else {
			w.Range = iv
		}
		if _, err := s.eng.SetBounds(w.Domain, w.Range); err != nil {
			return err
		}
		s.viewport.Reset()
		return s.show(ctx)
	case ":scale":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: :scale SX [SY]")
		}
		sx, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("scale %q: %w", args[0], err)
		}
		sy := sx
		if len(args) == 2 {
			if sy, err = strconv.ParseFloat(args[1], 64); err != nil {
				return fmt.Errorf("scale %q: %w", args[1], err)
			}
		}
		w := s.eng.SetScale(sx, sy)
		s.viewport.Window = w
		fmt.Fprintf(s.out, "scale %g, %g\n", w.ScaleX, w.ScaleY)
		return nil
	case ":pan":
		d, err := ints(args, 2)
		if err != nil {
			return err
		}
		if !s.viewport.Pan(float64(d[0]), float64(d[1])) {
			fmt.Fprintln(s.out, "at the edge of the plot")
		}
		return nil
	case ":reset":
		s.viewport.Reset()
		return nil
	case ":list":
		for _, rel := range s.eng.Relations() {
			if !rel.Solved() {
				fmt.Fprintf(s.out, "[%d] %s  (solving)\n", rel.ID, rel.Text)
				continue
			}
			_, axis, _ := rel.Branches(context.Background())
			fmt.Fprintf(s.out, "[%d] %s  (in %s)\n", rel.ID, rel.Text, axis)
		}
		return nil
	case ":rm":
		id, err := ints(args, 1)
		if err != nil {
			return err
		}
		if !s.eng.Remove(id[0]) {
			return fmt.Errorf("no relation %d", id[0])
		}
		return nil
	case ":edit":
		if len(args) < 2 {
			return errors.New("usage: :edit ID TEXT")
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%q is not an id", args[0])
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))
		text := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		rel, err := s.eng.Edit(id, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "[%d] %s\n", rel.ID, rel)
		return s.show(ctx)
	case ":render":
		if len(args) != 1 {
			return errors.New("usage: :render FILE")
		}
		write := s.export
		if strings.EqualFold(filepath.Ext(args[0]), ".png") {
			write = s.renderPNG
		}
		if err := write(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "wrote %s\n", args[0])
		return nil
	}
	return fmt.Errorf("unknown command %s (try :help)", cmd)
}

func (s *session) show(ctx context.Context) error {
	frame, err := s.frame(ctx)
	if err != nil {
		return err
	}
	s.summarize(frame)
	return nil
}

func runREPL(s *session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "graphcalc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem(":domain"), readline.PcItem(":range"), readline.PcItem(":scale"),
			readline.PcItem(":pan"), readline.PcItem(":reset"), readline.PcItem(":list"),
			readline.PcItem(":edit"), readline.PcItem(":rm"), readline.PcItem(":render"),
			readline.PcItem(":help"), readline.PcItem(":quit"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	s.out = rl.Stdout()

	fmt.Fprintln(s.out, "type a relation, or :help")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := s.exec(context.Background(), line); err == errQuit {
			return nil
		} else if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
	}
}

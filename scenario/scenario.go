// Package scenario drives scripted map edits. A tengo script is run once per
// frame with the globals below and may block cells while the entity moves.
//
//	frame          current frame number
//	block(x, y)    block a cell; false if out of range or already blocked
//	walkable(x, y) report whether a cell is walkable
//	entity_cell()  [x, y] of the routed entity
//	route_state()  coordinator state name
//	log(...)       write to the game log
//	stop()         end the scenario after this frame
package scenario

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/tilepath/grid"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Host is the game state a script can see and change.
type Host interface {
	Block(c grid.Cell) (bool, error)
	Walkable(c grid.Cell) bool
	EntityCell() grid.Cell
	RouteState() string
}

type Runner struct {
	name     string
	compiled *tengo.Compiled
	host     Host
	logger   *log.Logger
	stopped  bool
	blocked  int
}

// Load reads a script from disk when name exists there, from the embedded
// scripts otherwise.
func Load(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	clean := strings.TrimPrefix(name, "scripts/")
	data, err := ScriptsFS.ReadFile("scripts/" + clean)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", name, err)
	}
	return data, nil
}

// Compile prepares src for repeated runs against host.
func Compile(name string, src []byte, host Host, logger *log.Logger) (*Runner, error) {
	if host == nil {
		return nil, fmt.Errorf("scenario: nil host")
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{name: name, host: host, logger: logger}

	script := tengo.NewScript(src)
	_ = script.Add("frame", 0)
	for ident, fn := range r.builtins() {
		if err := script.Add(ident, fn); err != nil {
			return nil, fmt.Errorf("scenario: %s: %w", r.name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math", "text", "fmt", "rand", "json"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scenario: compile %s: %w", r.name, err)
	}
	r.compiled = compiled
	return r, nil
}

func (r *Runner) Name() string { return r.name }

// Stopped reports whether the script called stop().
func (r *Runner) Stopped() bool { return r.stopped }

// Blocked returns how many cells the script has blocked so far.
func (r *Runner) Blocked() int { return r.blocked }

// Step runs the script for frame. It does nothing once the script stopped.
func (r *Runner) Step(frame int) error {
	if r.stopped {
		return nil
	}
	if err := r.compiled.Set("frame", frame); err != nil {
		return err
	}
	if err := r.compiled.Run(); err != nil {
		return fmt.Errorf("scenario: %s frame %d: %w", r.name, frame, err)
	}
	return nil
}

func (r *Runner) builtins() map[string]*tengo.UserFunction {
	return map[string]*tengo.UserFunction{
		"block": {Name: "block", Value: func(args ...tengo.Object) (tengo.Object, error) {
			c, err := cellArgs(args)
			if err != nil {
				return nil, err
			}
			changed, err := r.host.Block(c)
			if err != nil {
				r.logger.Warn("script block rejected", "script", r.name, "cell", c, "err", err)
				return tengo.FalseValue, nil
			}
			if !changed {
				return tengo.FalseValue, nil
			}
			r.blocked++
			return tengo.TrueValue, nil
		}},
		"walkable": {Name: "walkable", Value: func(args ...tengo.Object) (tengo.Object, error) {
			c, err := cellArgs(args)
			if err != nil {
				return nil, err
			}
			if r.host.Walkable(c) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		}},
		"entity_cell": {Name: "entity_cell", Value: func(args ...tengo.Object) (tengo.Object, error) {
			c := r.host.EntityCell()
			return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(c.X)}, &tengo.Int{Value: int64(c.Y)}}}, nil
		}},
		"route_state": {Name: "route_state", Value: func(args ...tengo.Object) (tengo.Object, error) {
			return &tengo.String{Value: r.host.RouteState()}, nil
		}},
		"log": {Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				s, _ := tengo.ToString(a)
				parts = append(parts, s)
			}
			r.logger.Info(strings.Join(parts, " "), "script", r.name)
			return tengo.UndefinedValue, nil
		}},
		"stop": {Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
			r.stopped = true
			return tengo.UndefinedValue, nil
		}},
	}
}

func cellArgs(args []tengo.Object) (grid.Cell, error) {
	if len(args) != 2 {
		return grid.Cell{}, tengo.ErrWrongNumArguments
	}
	x, ok := tengo.ToInt(args[0])
	if !ok {
		return grid.Cell{}, tengo.ErrInvalidArgumentType{Name: "x", Expected: "int", Found: args[0].TypeName()}
	}
	y, ok := tengo.ToInt(args[1])
	if !ok {
		return grid.Cell{}, tengo.ErrInvalidArgumentType{Name: "y", Expected: "int", Found: args[1].TypeName()}
	}
	return grid.Cell{X: x, Y: y}, nil
}

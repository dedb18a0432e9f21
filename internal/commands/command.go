// Package commands maps player input lines onto game operations. The
// table is static: every verb and alias is declared in table.go and
// indexed once at init. Handlers run inside the game's serialized Run
// path, so they may mutate world state freely.
package commands

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/embermud/ember/internal/game"
	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/textfilter"
)

// Result is the outcome of one dispatched command.
type Result struct {
	Success bool
	Message string
	// Quit asks the session to close after delivering Message.
	Quit bool
}

// Handler executes one command for a player. The world lock is held.
type Handler func(g *game.Game, p *actor.Player, arg string) Result

// Command couples a verb's metadata with its handler.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Handler     Handler
}

var registry = make(map[string]*Command)

func init() {
	table = buildTable()
	for _, cmd := range table {
		register(cmd.Name, cmd)
		for _, alias := range cmd.Aliases {
			register(alias, cmd)
		}
	}
}

func register(name string, cmd *Command) {
	key := strings.ToLower(name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("commands: duplicate registration for %q", name))
	}
	registry[key] = cmd
}

// All returns the command table sorted by primary name, for help output.
func All() []*Command {
	out := make([]*Command, len(table))
	copy(out, table)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch normalizes a raw input line, resolves the verb, and runs its
// handler. A leading apostrophe is shorthand for say. A handler panic is
// contained here: the world stays up and the player gets a generic
// failure.
func Dispatch(g *game.Game, p *actor.Player, line string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Command handler panicked", "player_id", p.ID, "input", line, "panic", r)
			res = Result{Success: false, Message: "Something went wrong. Your command was not completed."}
		}
	}()

	line = textfilter.Sanitize(line)
	if line == "" {
		return Result{Success: true}
	}
	if strings.HasPrefix(line, "'") {
		return handleSay(g, p, strings.TrimPrefix(line, "'"))
	}

	verb := line
	arg := ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		verb, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	cmd, ok := registry[strings.ToLower(verb)]
	if !ok {
		return Result{Success: false, Message: fmt.Sprintf("Unknown command '%s'. Type 'help'.", verb)}
	}
	return cmd.Handler(g, p, arg)
}

package commands

import (
	"fmt"
	"strings"

	"github.com/embermud/ember/internal/game"
	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
)

// table is the full verb set, built in init before the registry is
// indexed. Direction verbs are generated so the walk handler stays in
// one place. A package-level initializer would cycle: buildTable wires
// handleHelp, which reads the table through All.
var table []*Command

func buildTable() []*Command {
	cmds := []*Command{
		{Name: "look", Aliases: []string{"l"}, Usage: "look", Description: "describe your surroundings",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return Result{Success: true, Message: g.LookText(p)}
			}},
		{Name: "go", Usage: "go <direction>", Description: "walk through an exit",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.Move(p, arg))
			}},
		{Name: "attack", Aliases: []string{"kill", "k"}, Usage: "attack <monster>", Description: "attack a monster in the room",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.Attack(p, arg))
			}},
		{Name: "get", Aliases: []string{"take"}, Usage: "get <item>", Description: "pick up an item from the ground",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.PickUp(p, arg))
			}},
		{Name: "drop", Usage: "drop <item>", Description: "drop a carried item",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.Drop(p, arg))
			}},
		{Name: "use", Usage: "use <item>", Description: "consume a potion or other consumable",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.UseItem(p, arg))
			}},
		{Name: "equip", Aliases: []string{"wield", "wear"}, Usage: "equip <item>", Description: "equip a weapon or armor",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.EquipItem(p, arg))
			}},
		{Name: "unequip", Aliases: []string{"remove"}, Usage: "unequip <slot>", Description: "empty an equipment slot",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.UnequipSlot(p, arg))
			}},
		{Name: "inventory", Aliases: []string{"i", "inv"}, Usage: "inventory", Description: "list carried and equipped items",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return Result{Success: true, Message: g.InventoryText(p)}
			}},
		{Name: "craft", Usage: "craft [list|show <recipe>|make <recipe>|skills|status]", Description: "work a crafting recipe",
			Handler: handleCraft},
		{Name: "quests", Aliases: []string{"journal"}, Usage: "quests", Description: "list your quests",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return Result{Success: true, Message: g.QuestLog(p)}
			}},
		{Name: "quest", Usage: "quest <name>", Description: "show one quest in detail",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				if arg == "" {
					return Result{Success: true, Message: g.QuestLog(p)}
				}
				return wrap(g.QuestDetail(p, arg))
			}},
		{Name: "objectives", Aliases: []string{"obj"}, Usage: "objectives", Description: "show active quest objectives",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return Result{Success: true, Message: g.ObjectivesText(p)}
			}},
		{Name: "accept", Usage: "accept <quest>", Description: "accept a quest from an NPC here",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.AcceptQuest(p, arg))
			}},
		{Name: "abandon", Usage: "abandon <quest>", Description: "abandon an active quest",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.AbandonQuest(p, arg))
			}},
		{Name: "turnin", Usage: "turnin <quest>", Description: "turn in a completed quest",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.TurnInQuest(p, arg))
			}},
		{Name: "talk", Aliases: []string{"greet"}, Usage: "talk <npc>", Description: "talk to an NPC in the room",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.TalkToNPC(p, arg))
			}},
		{Name: "say", Usage: "say <message>", Description: "speak to the room",
			Handler: handleSay},
		{Name: "yell", Aliases: []string{"shout"}, Usage: "yell <message>", Description: "shout to this room and adjacent rooms",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.Yell(p, arg))
			}},
		{Name: "whisper", Aliases: []string{"tell"}, Usage: "whisper <player> <message>", Description: "send a private message",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.Whisper(p, arg))
			}},
		{Name: "who", Usage: "who", Description: "list players online",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return Result{Success: true, Message: g.WhoText()}
			}},
		{Name: "score", Aliases: []string{"stats", "stat"}, Usage: "score", Description: "show your character sheet",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return Result{Success: true, Message: g.ScoreText(p)}
			}},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Description: "list commands",
			Handler: handleHelp},
		{Name: "quit", Aliases: []string{"exit", "logout"}, Usage: "quit", Description: "save and disconnect",
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				g.Emit(event.Disconnect(p.ID))
				return Result{Success: true, Message: "Farewell.", Quit: true}
			}},
	}

	dirs := []struct {
		name  string
		alias string
	}{
		{"north", "n"}, {"south", "s"}, {"east", "e"}, {"west", "w"},
		{"up", "u"}, {"down", "d"},
		{"northeast", "ne"}, {"northwest", "nw"},
		{"southeast", "se"}, {"southwest", "sw"},
	}
	for _, d := range dirs {
		dir := d.name
		cmds = append(cmds, &Command{
			Name:        dir,
			Aliases:     []string{d.alias},
			Usage:       dir,
			Description: "walk " + dir,
			Handler: func(g *game.Game, p *actor.Player, arg string) Result {
				return wrap(g.Move(p, dir))
			},
		})
	}
	return cmds
}

func wrap(ok bool, msg string) Result {
	return Result{Success: ok, Message: msg}
}

func handleSay(g *game.Game, p *actor.Player, arg string) Result {
	return wrap(g.Say(p, arg))
}

func handleCraft(g *game.Game, p *actor.Player, arg string) Result {
	sub := arg
	rest := ""
	if i := strings.IndexByte(arg, ' '); i >= 0 {
		sub, rest = arg[:i], strings.TrimSpace(arg[i+1:])
	}
	switch strings.ToLower(sub) {
	case "", "list":
		return Result{Success: true, Message: g.CraftList(p)}
	case "show":
		return wrap(g.CraftShow(p, rest))
	case "make":
		return wrap(g.StartCraft(p, rest))
	case "skills":
		return Result{Success: true, Message: g.CraftSkills(p)}
	case "status":
		return Result{Success: true, Message: g.CraftStatus(p)}
	default:
		// Treat "craft <recipe>" as shorthand for make.
		return wrap(g.StartCraft(p, arg))
	}
}

func handleHelp(g *game.Game, p *actor.Player, arg string) Result {
	if arg != "" {
		cmd, ok := registry[strings.ToLower(arg)]
		if !ok {
			return Result{Success: false, Message: fmt.Sprintf("No such command '%s'.", arg)}
		}
		return Result{Success: true, Message: fmt.Sprintf("%s\n  %s", cmd.Usage, cmd.Description)}
	}
	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, cmd := range All() {
		name := cmd.Name
		if len(cmd.Aliases) > 0 {
			name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		sb.WriteString(fmt.Sprintf("\n  %-28s %s", name, cmd.Description))
	}
	return Result{Success: true, Message: sb.String()}
}

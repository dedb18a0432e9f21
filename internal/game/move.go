package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
	"github.com/embermud/ember/pkg/quest"
	"github.com/embermud/ember/pkg/world"
)

// Move walks a player through an exit. Moving breaks off any combat the
// player is in, and fires the explore quest event for the destination.
func (g *Game) Move(p *actor.Player, dirInput string) (bool, string) {
	dir, ok := world.CanonicalDirection(dirInput)
	if !ok {
		return false, fmt.Sprintf("'%s' is not a direction.", dirInput)
	}
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return false, "You are nowhere."
	}
	destID, ok := room.Exits[dir]
	if !ok {
		return false, fmt.Sprintf("There is no exit %s.", dir)
	}

	err := g.world.MovePlayer(p, destID)
	if err != nil {
		if errors.Is(err, world.ErrNoSuchRoom) {
			// A dangling exit is legal world data; the passage just
			// doesn't open.
			return false, "The way is blocked."
		}
		return false, "You cannot go that way."
	}

	g.clearEncountersFor(p.ID)
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(room.ID, p.ID),
		fmt.Sprintf("%s leaves %s.", p.Name, dir),
	))
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(destID, p.ID),
		fmt.Sprintf("%s arrives.", p.Name),
	))
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveExplore, Target: destID, Quantity: 1})
	g.markDirty(p.ID)
	return true, g.LookText(p)
}

// LookText renders the player's current room: description, exits, and
// occupants.
func (g *Game) LookText(p *actor.Player) string {
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return "You float in a featureless void."
	}
	var sb strings.Builder
	sb.WriteString(room.Name)
	if room.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(room.Description)
	}

	exits := room.ExitDirections()
	if len(exits) > 0 {
		sb.WriteString("\nExits: ")
		sb.WriteString(strings.Join(exits, ", "))
	} else {
		sb.WriteString("\nThere are no obvious exits.")
	}

	for _, n := range sortedNPCs(room) {
		sb.WriteString(fmt.Sprintf("\n%s is here.", n.Name))
	}
	for _, m := range sortedMonsters(room) {
		sb.WriteString(fmt.Sprintf("\nA %s is here. (%d/%d hp)", m.Name, m.HP, m.MaxHP))
	}
	for _, other := range sortedPlayers(room) {
		if other.ID == p.ID {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s is here.", other.Name))
	}
	for _, it := range room.Items {
		if it.Stackable && it.Quantity > 1 {
			sb.WriteString(fmt.Sprintf("\n%d× %s lie here.", it.Quantity, it.Name))
		} else {
			sb.WriteString(fmt.Sprintf("\n%s lies here.", it.Name))
		}
	}
	return sb.String()
}

func sortedNPCs(room *world.Room) []*actor.NPC {
	out := make([]*actor.NPC, 0, len(room.NPCs))
	for _, n := range room.NPCs {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedMonsters(room *world.Room) []*actor.Monster {
	out := make([]*actor.Monster, 0, len(room.Monsters))
	for _, m := range room.Monsters {
		if m.Alive() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedPlayers(room *world.Room) []*actor.Player {
	out := make([]*actor.Player, 0, len(room.Players))
	for _, p := range room.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package game

import (
	"fmt"
	"strings"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
)

// Say sends a message to everyone in the player's room.
func (g *Game) Say(p *actor.Player, message string) (bool, string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return false, "Say what?"
	}
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(p.Location, p.ID),
		fmt.Sprintf("%s says, \"%s\"", p.Name, message),
	))
	return true, fmt.Sprintf("You say, \"%s\"", message)
}

// Yell sends a message to the player's room and every adjacent room.
func (g *Game) Yell(p *actor.Player, message string) (bool, string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return false, "Yell what?"
	}
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return false, "You are nowhere."
	}
	seen := map[string]bool{p.ID: true}
	var recipients []string
	collect := func(roomID string) {
		for _, id := range g.world.RoomOccupantIDs(roomID, "") {
			if !seen[id] {
				seen[id] = true
				recipients = append(recipients, id)
			}
		}
	}
	collect(room.ID)
	for _, destID := range room.Exits {
		collect(destID)
	}
	g.emit(event.RoomBroadcast(recipients, fmt.Sprintf("%s yells, \"%s\"", p.Name, message)))
	return true, fmt.Sprintf("You yell, \"%s\"", message)
}

// Whisper sends a private message to a named online player.
func (g *Game) Whisper(p *actor.Player, arg string) (bool, string) {
	parts := strings.SplitN(strings.TrimSpace(arg), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return false, "Whisper to whom, and what?"
	}
	target := g.world.FindPlayerByName(parts[0])
	if target == nil {
		return false, fmt.Sprintf("%s is not here.", parts[0])
	}
	if target.ID == p.ID {
		return false, "You mutter to yourself."
	}
	message := strings.TrimSpace(parts[1])
	g.emit(event.Message(target.ID, fmt.Sprintf("%s whispers, \"%s\"", p.Name, message)))
	return true, fmt.Sprintf("You whisper to %s, \"%s\"", target.Name, message)
}

package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/embermud/ember/pkg/actor"
)

// ErrNoSuchRoom is returned when an exit points at a room that was never
// loaded. Dangling exits are legal world data; traversal of one is not.
var ErrNoSuchRoom = errors.New("no such room")

// World is the arena owning every room and the id-indexed player registry.
// It is a pure state container: it carries no locking of its own, and all
// access is serialized by the game core's single-writer discipline.
type World struct {
	rooms         map[string]*Room
	players       map[string]*actor.Player // online players by id
	playersByName map[string]string        // lowercased name → id
	respawnRoom   string
}

// New creates an empty world with the given safe respawn room id.
func New(respawnRoom string) *World {
	return &World{
		rooms:         make(map[string]*Room),
		players:       make(map[string]*actor.Player),
		playersByName: make(map[string]string),
		respawnRoom:   respawnRoom,
	}
}

// RespawnRoom returns the id of the designated safe respawn room.
func (w *World) RespawnRoom() string {
	return w.respawnRoom
}

// AddRoom registers a room. Later registrations with the same id replace
// earlier ones.
func (w *World) AddRoom(r *Room) {
	r.init()
	w.rooms[r.ID] = r
}

// GetRoom returns the room with the given id, or nil.
func (w *World) GetRoom(id string) *Room {
	return w.rooms[id]
}

// Rooms returns all room ids in sorted order.
func (w *World) Rooms() []string {
	ids := make([]string, 0, len(w.rooms))
	for id := range w.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddPlayer registers an online player and places them in their recorded
// room, falling back to the respawn room when that room does not exist.
func (w *World) AddPlayer(p *actor.Player) error {
	if _, online := w.players[p.ID]; online {
		return fmt.Errorf("player %s already online", p.Name)
	}
	room := w.GetRoom(p.Location)
	if room == nil {
		room = w.GetRoom(w.respawnRoom)
		if room == nil {
			return fmt.Errorf("respawn room %q missing: %w", w.respawnRoom, ErrNoSuchRoom)
		}
		p.Location = room.ID
	}
	w.players[p.ID] = p
	w.playersByName[strings.ToLower(p.Name)] = p.ID
	room.Players[p.ID] = p
	return nil
}

// RemovePlayer takes a player out of the world entirely.
func (w *World) RemovePlayer(playerID string) {
	p, ok := w.players[playerID]
	if !ok {
		return
	}
	if room := w.GetRoom(p.Location); room != nil {
		delete(room.Players, playerID)
	}
	delete(w.playersByName, strings.ToLower(p.Name))
	delete(w.players, playerID)
}

// GetPlayer returns an online player by id, or nil.
func (w *World) GetPlayer(id string) *actor.Player {
	return w.players[id]
}

// FindPlayerByName returns an online player by case-insensitive name.
func (w *World) FindPlayerByName(name string) *actor.Player {
	id, ok := w.playersByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil
	}
	return w.players[id]
}

// Players returns every online player.
func (w *World) Players() []*actor.Player {
	out := make([]*actor.Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MovePlayer transfers a player to the destination room. The transfer is
// transactional: the player is never registered in two rooms, and never in
// none, once the call returns.
func (w *World) MovePlayer(p *actor.Player, destID string) error {
	dest := w.GetRoom(destID)
	if dest == nil {
		return fmt.Errorf("room %q: %w", destID, ErrNoSuchRoom)
	}
	if src := w.GetRoom(p.Location); src != nil {
		delete(src.Players, p.ID)
	}
	dest.Players[p.ID] = p
	p.Location = dest.ID
	return nil
}

// AddMonster inserts a monster instance into its room.
func (w *World) AddMonster(m *actor.Monster) error {
	room := w.GetRoom(m.Room)
	if room == nil {
		return fmt.Errorf("room %q: %w", m.Room, ErrNoSuchRoom)
	}
	room.Monsters[m.ID] = m
	return nil
}

// RemoveMonster deletes a monster instance from its room.
func (w *World) RemoveMonster(m *actor.Monster) {
	if room := w.GetRoom(m.Room); room != nil {
		delete(room.Monsters, m.ID)
	}
}

// AddNPC anchors an NPC to its room.
func (w *World) AddNPC(n *actor.NPC) error {
	room := w.GetRoom(n.Room)
	if room == nil {
		return fmt.Errorf("room %q: %w", n.Room, ErrNoSuchRoom)
	}
	room.NPCs[n.ID] = n
	return nil
}

// RoomOccupantIDs returns the ids of players in a room, optionally
// excluding one. Used to resolve broadcast recipients at emit time.
func (w *World) RoomOccupantIDs(roomID, excludeID string) []string {
	room := w.GetRoom(roomID)
	if room == nil {
		return nil
	}
	ids := make([]string, 0, len(room.Players))
	for id := range room.Players {
		if id == excludeID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

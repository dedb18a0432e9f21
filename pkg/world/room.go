package world

import (
	"sort"
	"strings"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/item"
)

// directionAliases maps shorthand movement input to canonical directions.
var directionAliases = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west",
	"u": "up", "d": "down",
	"ne": "northeast", "nw": "northwest",
	"se": "southeast", "sw": "southwest",
	"north": "north", "south": "south", "east": "east", "west": "west",
	"up": "up", "down": "down",
	"northeast": "northeast", "northwest": "northwest",
	"southeast": "southeast", "southwest": "southwest",
}

// CanonicalDirection resolves movement input (including single-letter and
// diagonal shorthands) to a canonical direction name. Returns false for
// input that is not a direction.
func CanonicalDirection(input string) (string, bool) {
	dir, ok := directionAliases[strings.ToLower(strings.TrimSpace(input))]
	return dir, ok
}

// Room is a node in the world graph. Rooms are created once at world load
// and live for the process lifetime. Exits may reference rooms that were
// never loaded; such exits are shown but cannot be traversed.
type Room struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Exits       map[string]string `json:"exits,omitempty"`      // direction → room id, asymmetric allowed
	Properties  map[string]any    `json:"properties,omitempty"` // open set of boolean/string flags

	// Runtime occupancy. Not serialized: ownership of players, monsters
	// and ground items is reconstructed at load time.
	Players  map[string]*actor.Player  `json:"-"`
	Monsters map[string]*actor.Monster `json:"-"`
	NPCs     map[string]*actor.NPC     `json:"-"`
	Items    []*item.Item              `json:"-"`
}

func (r *Room) init() {
	if r.Players == nil {
		r.Players = make(map[string]*actor.Player)
	}
	if r.Monsters == nil {
		r.Monsters = make(map[string]*actor.Monster)
	}
	if r.NPCs == nil {
		r.NPCs = make(map[string]*actor.NPC)
	}
	if r.Exits == nil {
		r.Exits = make(map[string]string)
	}
}

// Flag reports a boolean room property. Missing properties are false.
func (r *Room) Flag(name string) bool {
	switch v := r.Properties[name].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// ExitDirections returns the room's exit directions in sorted order.
func (r *Room) ExitDirections() []string {
	dirs := make([]string, 0, len(r.Exits))
	for dir := range r.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// AddItem places an item on the room's ground, stacking when possible.
func (r *Room) AddItem(it *item.Item) {
	if it == nil {
		return
	}
	if it.Stackable {
		for _, ground := range r.Items {
			if ground.ID == it.ID && ground.Stackable {
				ground.Quantity += it.Quantity
				return
			}
		}
	}
	r.Items = append(r.Items, it)
}

// RemoveItem takes a matching item instance off the ground and returns it.
// Fixtures cannot be removed.
func (r *Room) RemoveItem(input string) *item.Item {
	for idx, ground := range r.Items {
		if !ground.Matches(input) {
			continue
		}
		if ground.Type == item.TypeFixture {
			return nil
		}
		r.Items = append(r.Items[:idx], r.Items[idx+1:]...)
		return ground
	}
	return nil
}

// FindItem returns a matching ground item without removing it.
func (r *Room) FindItem(input string) *item.Item {
	for _, ground := range r.Items {
		if ground.Matches(input) {
			return ground
		}
	}
	return nil
}

// FindMonster resolves player input to a living monster in the room.
func (r *Room) FindMonster(input string) *actor.Monster {
	for _, m := range r.Monsters {
		if m.Alive() && m.Matches(input) {
			return m
		}
	}
	return nil
}

// FindNPC resolves player input to an NPC in the room.
func (r *Room) FindNPC(input string) *actor.NPC {
	for _, n := range r.NPCs {
		if n.Matches(input) {
			return n
		}
	}
	return nil
}

// Package game holds the live game-state coordination core: the world
// arena, the combat, quest and crafting engines, the timer queue, and the
// fixed-interval tick loop.
//
// All world mutation is serialized behind one mutex. The only two mutation
// sources are inbound command handling (via Run) and the tick callback, so
// no multi-step mutation is ever observed half-applied.
package game

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/embermud/ember/internal/storage"
	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
	"github.com/embermud/ember/pkg/world"
)

const outboundBuffer = 4096

// Roller is the randomness source for combat and crafting. Tests inject a
// deterministic implementation.
type Roller interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// IntN returns a uniform value in [0,n).
	IntN(n int) int
}

type randRoller struct {
	r *rand.Rand
}

func (rr randRoller) Float64() float64 { return rr.r.Float64() }
func (rr randRoller) IntN(n int) int   { return rr.r.Intn(n) }

// NewRoller returns the production randomness source.
func NewRoller() Roller {
	return randRoller{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Game owns the authoritative world state. Mutation happens only inside
// Run (command path) or Tick (scheduler path); both hold the same lock.
type Game struct {
	world  *world.World
	data   *storage.WorldData
	store  storage.Storage
	logger *slog.Logger
	roller Roller
	clock  func() time.Time

	sched      *scheduler
	encounters map[string]*encounter

	// pendingUpdate is flushed to PlayerUpdate events every tick;
	// dirty survives until the autosave loop snapshots it.
	pendingUpdate map[string]bool
	dirty         map[string]bool

	events []event.Event
	out    chan event.Event

	tickCount uint64

	mu sync.Mutex // the single world lock
}

// New assembles a game around loaded world data. The world graph is
// populated from the catalog: rooms first, then NPCs and initial monster
// spawns.
func New(data *storage.WorldData, store storage.Storage, logger *slog.Logger, roller Roller) (*Game, error) {
	if roller == nil {
		roller = NewRoller()
	}
	g := &Game{
		world:         world.New(data.RespawnRoom),
		data:          data,
		store:         store,
		logger:        logger,
		roller:        roller,
		clock:         func() time.Time { return time.Now().UTC() },
		sched:         newScheduler(),
		encounters:    make(map[string]*encounter),
		pendingUpdate: make(map[string]bool),
		dirty:         make(map[string]bool),
		out:           make(chan event.Event, outboundBuffer),
	}

	for _, r := range data.Rooms {
		g.world.AddRoom(r)
	}
	if g.world.GetRoom(data.RespawnRoom) == nil {
		return nil, fmt.Errorf("respawn room %q not defined in rooms.json", data.RespawnRoom)
	}
	for _, n := range data.NPCs {
		if err := g.world.AddNPC(n); err != nil {
			logger.Warn("Skipping NPC in unknown room", "npc", n.ID, "room", n.Room)
		}
	}
	for _, sp := range data.Spawns {
		if sp.GroundItem != "" {
			if tmpl, ok := data.Items[sp.GroundItem]; ok {
				if room := g.world.GetRoom(sp.RoomID); room != nil {
					room.AddItem(tmpl.Clone())
				}
			}
		}
		count := sp.Count
		if count <= 0 && sp.MonsterID != "" {
			count = 1
		}
		for i := 0; i < count; i++ {
			if err := g.spawnMonster(sp.MonsterID, sp.RoomID); err != nil {
				logger.Warn("Skipping spawn", "monster", sp.MonsterID, "room", sp.RoomID, "error", err)
			}
		}
	}
	return g, nil
}

// Events returns the outbound event channel drained by the connection
// layer.
func (g *Game) Events() <-chan event.Event {
	return g.out
}

// World exposes the world arena for read access inside Run callbacks.
func (g *Game) World() *world.World {
	return g.world
}

// Data exposes the static content catalog.
func (g *Game) Data() *storage.WorldData {
	return g.data
}

// Now returns the game clock's current time. Only meaningful while the
// caller holds the world lock via Run or Tick.
func (g *Game) Now() time.Time {
	return g.clock()
}

// Run executes fn while holding the world lock, then flushes any events fn
// emitted. Every command handler and every out-of-band mutation (login,
// disconnect) goes through here.
func (g *Game) Run(fn func()) {
	g.mu.Lock()
	defer func() {
		g.flushEvents()
		g.mu.Unlock()
	}()
	fn()
}

func (g *Game) emit(ev event.Event) {
	g.events = append(g.events, ev)
}

// Emit appends an event from inside a Run callback.
func (g *Game) Emit(ev event.Event) {
	g.emit(ev)
}

func (g *Game) flushEvents() {
	for _, ev := range g.events {
		select {
		case g.out <- ev:
		default:
			// Transport is hopelessly behind; dropping beats blocking
			// the world lock on I/O.
			g.logger.Warn("Outbound event buffer full, dropping event", "type", ev.Type)
		}
	}
	g.events = g.events[:0]
}

// markDirty flags a player for the per-tick update broadcast and the next
// autosave.
func (g *Game) markDirty(playerID string) {
	g.pendingUpdate[playerID] = true
	g.dirty[playerID] = true
}

// MarkDirty flags a player from inside a Run callback.
func (g *Game) MarkDirty(playerID string) {
	g.markDirty(playerID)
}

func (g *Game) spawnMonster(templateID, roomID string) error {
	tmpl, ok := g.data.Monsters[templateID]
	if !ok {
		return fmt.Errorf("unknown monster template %q", templateID)
	}
	m := actor.NewMonsterFromTemplate(tmpl, roomID)
	return g.world.AddMonster(m)
}

// JoinPlayer places a loaded player into the world and announces them.
func (g *Game) JoinPlayer(p *actor.Player) error {
	p.Normalize()
	g.expireStaleCraft(p)
	if err := g.world.AddPlayer(p); err != nil {
		return err
	}
	p.LastSeen = g.clock()
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(p.Location, p.ID),
		fmt.Sprintf("%s has arrived.", p.Name),
	))
	g.logger.Info("Player joined", "player_id", p.ID, "player", p.Name, "room", p.Location)
	return nil
}

// expireStaleCraft clears a crafting flag that survived a disconnect. The
// deferred completion task died with the old process or session, so the
// attempt is void; materials were never consumed.
func (g *Game) expireStaleCraft(p *actor.Player) {
	if p.IsCrafting {
		p.IsCrafting = false
		p.CraftingRecipe = ""
		p.CraftingEnds = time.Time{}
	}
}

// LeavePlayer removes a player from the world and returns the instance for
// a final save. An in-progress craft is interrupted without consuming
// materials. A disconnect is injected through Run like any other command,
// never applied out-of-band.
func (g *Game) LeavePlayer(playerID string) *actor.Player {
	p := g.world.GetPlayer(playerID)
	if p == nil {
		return nil
	}
	g.clearEncountersFor(playerID)
	g.expireStaleCraft(p)
	p.LastSeen = g.clock()
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(p.Location, p.ID),
		fmt.Sprintf("%s has left.", p.Name),
	))
	g.world.RemovePlayer(playerID)
	delete(g.dirty, playerID)
	delete(g.pendingUpdate, playerID)
	g.logger.Info("Player left", "player_id", p.ID, "player", p.Name)
	return p
}

// SnapshotDirty clones every save-pending player under the lock and clears
// the save flags. Clones are JSON round-trips so the caller can persist
// them outside the lock without racing live mutation.
func (g *Game) SnapshotDirty() []*actor.Player {
	var out []*actor.Player
	g.Run(func() {
		for id := range g.dirty {
			p := g.world.GetPlayer(id)
			if p == nil {
				delete(g.dirty, id)
				continue
			}
			clone, err := clonePlayer(p)
			if err != nil {
				g.logger.Error("Failed to snapshot player", "player_id", id, "error", err)
				continue
			}
			out = append(out, clone)
			delete(g.dirty, id)
		}
	})
	return out
}

func clonePlayer(p *actor.Player) (*actor.Player, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}
	var clone actor.Player
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	clone.Normalize()
	return &clone, nil
}

// giveItem adds qty of a catalog item to the player's inventory and fires
// the collect quest event. Returns false for unknown catalog ids.
func (g *Game) giveItem(p *actor.Player, itemID string, qty int) bool {
	tmpl, ok := g.data.Items[itemID]
	if !ok {
		g.logger.Warn("Reference to unknown item", "item", itemID)
		return false
	}
	if qty <= 0 {
		qty = 1
	}
	if tmpl.Stackable {
		it := tmpl.Clone()
		it.Quantity = qty
		p.AddItem(it)
	} else {
		for i := 0; i < qty; i++ {
			p.AddItem(tmpl.Clone())
		}
	}
	g.updateQuestProgress(p, questEvent{Type: "collect", Target: itemID, Quantity: qty})
	return true
}

package game

import (
	"context"
	"time"

	"github.com/embermud/ember/pkg/event"
)

// regenPulseTicks is how many ticks pass between passive recovery pulses.
// At the default 100ms tick that is one pulse every five seconds.
const regenPulseTicks = 50

// Tick advances the world by one scheduler step: due deferred tasks run
// first, then monster combat turns, then the periodic regen pulse, and
// finally the per-tick player update flush.
func (g *Game) Tick(now time.Time) {
	g.mu.Lock()
	defer func() {
		g.flushEvents()
		g.mu.Unlock()
	}()

	g.tickCount++

	for _, fn := range g.sched.PopDue(now) {
		fn()
	}

	g.processMonsterTurns(now)

	if g.tickCount%regenPulseTicks == 0 {
		g.regenPulse()
	}

	for id := range g.pendingUpdate {
		g.emit(event.PlayerUpdate(id))
		delete(g.pendingUpdate, id)
	}
}

// regenPulse restores a sliver of health and mana to players who are out
// of combat, and of health to monsters nobody is fighting.
func (g *Game) regenPulse() {
	for _, p := range g.world.Players() {
		if g.inCombat(p.ID) {
			continue
		}
		healed := 0
		if p.HP < p.MaxHP {
			healed += p.Heal(max(1, p.MaxHP/20))
		}
		if p.MP < p.MaxMP {
			healed += p.RestoreMana(max(1, p.MaxMP/20))
		}
		if healed > 0 {
			g.markDirty(p.ID)
		}
	}
	for _, roomID := range g.world.Rooms() {
		room := g.world.GetRoom(roomID)
		for _, m := range room.Monsters {
			if !m.Alive() || m.HP >= m.MaxHP || g.monsterEngaged(m.ID) {
				continue
			}
			m.HP += max(1, m.MaxHP/10)
			if m.HP > m.MaxHP {
				m.HP = m.MaxHP
			}
		}
	}
}

func (g *Game) monsterEngaged(monsterID string) bool {
	for _, enc := range g.encounters {
		if enc.monsterID == monsterID {
			return true
		}
	}
	return false
}

// RunLoop drives Tick at a fixed interval until the context is cancelled.
func (g *Game) RunLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	g.logger.Info("Game loop started", "tick_interval", interval)
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Game loop stopped")
			return
		case now := <-ticker.C:
			g.Tick(now.UTC())
		}
	}
}

// RunAutosave periodically persists every dirty player. Snapshots are
// taken under the world lock; the writes happen outside it. A failed
// save is logged and the player stays in the game with live state
// intact, to be retried on the next pass.
func (g *Game) RunAutosave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.saveAll(context.Background())
			return
		case <-ticker.C:
			g.saveAll(ctx)
		}
	}
}

func (g *Game) saveAll(ctx context.Context) {
	players := g.SnapshotDirty()
	for _, p := range players {
		if err := g.store.SavePlayer(ctx, p); err != nil {
			g.logger.Error("Autosave failed", "player_id", p.ID, "error", err)
			g.Run(func() {
				// Leave the save flag set so the next pass retries.
				g.dirty[p.ID] = true
			})
		}
	}
	if len(players) > 0 {
		g.logger.Debug("Autosave pass complete", "players", len(players))
	}
}

package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
	"github.com/embermud/ember/pkg/quest"
)

const (
	// defaultRespawnDelay applies to monsters without an explicit
	// respawn time.
	defaultRespawnDelay = 60 * time.Second
	// monsterTurnInterval is how often the tick resolves a
	// monster-initiated round for an idle encounter.
	monsterTurnInterval = 2 * time.Second
	critMultiplier      = 1.5
)

// encounter is the transient combat relationship between one player and
// one monster. Player attacks resolve synchronously in the command path;
// the tick resolves monster-initiated rounds once the monster's turn
// timer elapses.
type encounter struct {
	playerID      string
	monsterID     string
	roomID        string
	nextMonsterAt time.Time
}

func encounterKey(playerID, monsterID string) string {
	return playerID + "|" + monsterID
}

// combatant is the stat view the damage formula consumes. Players feed in
// effective (equipment-adjusted) stats.
type combatant struct {
	Level int
	Stats actor.Stats
}

// attackOutcome is the resolution of a single swing.
type attackOutcome struct {
	Damage int
	Crit   bool
	Dodged bool
}

// resolveAttack applies the damage formula:
//
//	base      = str*2 + level*3
//	defense   = vit + floor(agi*0.3)
//	reduction = defense / (defense + 50)
//	crit      = min(0.5, (dex+luk)/100), ×1.5
//	dodge     = min(0.3, max(0, (defAgi-attDex)*0.02)), damage 0
//	variance  = uniform [0.85, 1.15]
//	final     = max(1, floor(base * (1-reduction) * critMult * variance))
func resolveAttack(att, def combatant, roll Roller) attackOutcome {
	dodgeChance := float64(def.Stats.Agility-att.Stats.Dexterity) * 0.02
	if dodgeChance < 0 {
		dodgeChance = 0
	} else if dodgeChance > 0.3 {
		dodgeChance = 0.3
	}
	if roll.Float64() < dodgeChance {
		return attackOutcome{Dodged: true}
	}

	base := float64(att.Stats.Strength*2 + att.Level*3)
	defense := float64(def.Stats.Vitality + int(math.Floor(float64(def.Stats.Agility)*0.3)))
	reduction := defense / (defense + 50)

	critChance := float64(att.Stats.Dexterity+att.Stats.Luck) / 100
	if critChance > 0.5 {
		critChance = 0.5
	}
	crit := roll.Float64() < critChance
	mult := 1.0
	if crit {
		mult = critMultiplier
	}

	variance := 0.85 + roll.Float64()*0.3
	dmg := int(math.Floor(base * (1 - reduction) * mult * variance))
	if dmg < 1 {
		dmg = 1
	}
	return attackOutcome{Damage: dmg, Crit: crit}
}

func playerCombatant(p *actor.Player) combatant {
	return combatant{Level: p.Level, Stats: p.EffectiveStats()}
}

func monsterCombatant(m *actor.Monster) combatant {
	return combatant{Level: m.Level, Stats: m.Stats}
}

// Attack resolves one player-attack-then-counter pair against a target in
// the player's room. Lock must be held (command path).
func (g *Game) Attack(p *actor.Player, targetInput string) (bool, string) {
	targetInput = strings.TrimSpace(targetInput)
	if targetInput == "" {
		return false, "Attack what?"
	}
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return false, "You are nowhere."
	}
	m := room.FindMonster(targetInput)
	if m == nil {
		return false, fmt.Sprintf("There is no %s here to attack.", targetInput)
	}

	now := g.clock()
	var sb strings.Builder

	out := resolveAttack(playerCombatant(p), monsterCombatant(m), g.roller)
	switch {
	case out.Dodged:
		sb.WriteString(fmt.Sprintf("The %s dodges your attack!", m.Name))
	case out.Crit:
		m.ApplyDamage(out.Damage)
		sb.WriteString(fmt.Sprintf("Critical hit! You strike the %s for %d damage.", m.Name, out.Damage))
	default:
		m.ApplyDamage(out.Damage)
		sb.WriteString(fmt.Sprintf("You strike the %s for %d damage.", m.Name, out.Damage))
	}
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(room.ID, p.ID),
		fmt.Sprintf("%s attacks the %s!", p.Name, m.Name),
	))

	if !m.Alive() {
		sb.WriteString("\n")
		sb.WriteString(g.handleMonsterDeath(p, m))
		g.markDirty(p.ID)
		return true, sb.String()
	}
	sb.WriteString(fmt.Sprintf(" (%d/%d hp)", m.HP, m.MaxHP))

	// Counter-attack: the defender answers immediately, then the
	// encounter waits for the monster-turn timer.
	counter := resolveAttack(monsterCombatant(m), playerCombatant(p), g.roller)
	desc, died := g.applyMonsterHit(p, m, counter)
	sb.WriteString("\n")
	sb.WriteString(desc)

	if !died {
		key := encounterKey(p.ID, m.ID)
		g.encounters[key] = &encounter{
			playerID:      p.ID,
			monsterID:     m.ID,
			roomID:        room.ID,
			nextMonsterAt: now.Add(monsterTurnInterval),
		}
	}
	g.markDirty(p.ID)
	return true, sb.String()
}

// applyMonsterHit applies one monster swing to a player and returns the
// narration plus whether the swing killed. Death respawn heals the player,
// so callers cannot infer death from HP afterwards.
func (g *Game) applyMonsterHit(p *actor.Player, m *actor.Monster, out attackOutcome) (string, bool) {
	if out.Dodged {
		return fmt.Sprintf("You dodge the %s's attack.", m.Name), false
	}
	p.ApplyDamage(out.Damage)
	desc := fmt.Sprintf("The %s hits you for %d damage. (%d/%d hp)", m.Name, out.Damage, p.HP, p.MaxHP)
	if out.Crit {
		desc = fmt.Sprintf("The %s lands a crushing blow for %d damage! (%d/%d hp)", m.Name, out.Damage, p.HP, p.MaxHP)
	}
	if p.HP <= 0 {
		desc += "\n" + g.handlePlayerDeath(p)
		return desc, true
	}
	return desc, false
}

// handleMonsterDeath awards rewards, rolls loot onto the ground, removes
// the monster, and arms its respawn timer.
func (g *Game) handleMonsterDeath(p *actor.Player, m *actor.Monster) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You have slain the %s!", m.Name))

	if m.ExperienceReward > 0 {
		levels := p.AddExperience(m.ExperienceReward)
		sb.WriteString(fmt.Sprintf(" You gain %d experience.", m.ExperienceReward))
		if levels > 0 {
			sb.WriteString(fmt.Sprintf("\nYou are now level %d!", p.Level))
		}
	}
	if m.GoldReward > 0 {
		p.Gold += m.GoldReward
		sb.WriteString(fmt.Sprintf(" You loot %d gold.", m.GoldReward))
	}

	room := g.world.GetRoom(m.Room)
	for _, entry := range m.Loot {
		if g.roller.Float64() >= entry.Chance {
			continue
		}
		tmpl, ok := g.data.Items[entry.ItemID]
		if !ok {
			g.logger.Warn("Loot table references unknown item", "monster", m.TemplateID, "item", entry.ItemID)
			continue
		}
		if room != nil {
			drop := tmpl.Clone()
			room.AddItem(drop)
			sb.WriteString(fmt.Sprintf("\nThe %s drops %s.", m.Name, drop.Name))
		}
	}

	g.world.RemoveMonster(m)
	g.clearEncountersWith(m.ID)
	g.scheduleRespawn(m)

	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(m.Room, p.ID),
		fmt.Sprintf("%s has slain the %s!", p.Name, m.Name),
	))
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveKill, Target: m.TemplateID, Quantity: 1})
	return sb.String()
}

// scheduleRespawn arms a timer that re-inserts a fresh instance of the
// monster's template into the same room, whether or not the room is
// occupied at that point.
func (g *Game) scheduleRespawn(m *actor.Monster) {
	delay := defaultRespawnDelay
	if m.RespawnTime > 0 {
		delay = time.Duration(m.RespawnTime) * time.Second
	}
	templateID, roomID := m.TemplateID, m.Room
	g.sched.ScheduleAfter(g.clock(), delay, func() {
		if err := g.spawnMonster(templateID, roomID); err != nil {
			g.logger.Error("Respawn failed", "monster", templateID, "room", roomID, "error", err)
			return
		}
		tmpl := g.data.Monsters[templateID]
		g.emit(event.RoomBroadcast(
			g.world.RoomOccupantIDs(roomID, ""),
			fmt.Sprintf("A %s appears.", tmpl.Name),
		))
	})
}

// handlePlayerDeath heals the player to half health, teleports them to the
// safe respawn room, and clears their encounters.
func (g *Game) handlePlayerDeath(p *actor.Player) string {
	g.clearEncountersFor(p.ID)
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(p.Location, p.ID),
		fmt.Sprintf("%s has been slain!", p.Name),
	))
	p.HP = p.MaxHP / 2
	if err := g.world.MovePlayer(p, g.world.RespawnRoom()); err != nil {
		g.logger.Error("Death respawn failed", "player_id", p.ID, "error", err)
	}
	g.markDirty(p.ID)
	return fmt.Sprintf("You have died! You awaken, battered, at %s.", g.roomName(p.Location))
}

func (g *Game) roomName(roomID string) string {
	if room := g.world.GetRoom(roomID); room != nil {
		return room.Name
	}
	return roomID
}

// processMonsterTurns runs on every tick and resolves one round for each
// encounter whose monster-turn timer has elapsed.
func (g *Game) processMonsterTurns(now time.Time) {
	for key, enc := range g.encounters {
		if now.Before(enc.nextMonsterAt) {
			continue
		}
		p := g.world.GetPlayer(enc.playerID)
		room := g.world.GetRoom(enc.roomID)
		if p == nil || room == nil || p.Location != enc.roomID {
			delete(g.encounters, key)
			continue
		}
		m := room.Monsters[enc.monsterID]
		if m == nil || !m.Alive() {
			delete(g.encounters, key)
			continue
		}

		out := resolveAttack(monsterCombatant(m), playerCombatant(p), g.roller)
		desc, died := g.applyMonsterHit(p, m, out)
		g.emit(event.Message(p.ID, desc))
		g.markDirty(p.ID)

		// Death already cleared this player's encounters.
		if !died {
			enc.nextMonsterAt = now.Add(monsterTurnInterval)
		}
	}
}

// clearEncountersFor drops every encounter involving a player.
func (g *Game) clearEncountersFor(playerID string) {
	for key, enc := range g.encounters {
		if enc.playerID == playerID {
			delete(g.encounters, key)
		}
	}
}

// clearEncountersWith drops every encounter involving a monster instance.
func (g *Game) clearEncountersWith(monsterID string) {
	for key, enc := range g.encounters {
		if enc.monsterID == monsterID {
			delete(g.encounters, key)
		}
	}
}

// inCombat reports whether the player has a live encounter.
func (g *Game) inCombat(playerID string) bool {
	for _, enc := range g.encounters {
		if enc.playerID == playerID {
			return true
		}
	}
	return false
}

package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embermud/ember/pkg/actor"
)

func TestResolveAttack_NeutralDamage(t *testing.T) {
	// base = 5*2 + 1*3 = 13, no defense, variance pinned at 1.0.
	att := combatant{Level: 1, Stats: actor.Stats{Strength: 5, Dexterity: 5, Luck: 5}}
	def := combatant{Level: 1, Stats: actor.Stats{Agility: 1}}

	out := resolveAttack(att, def, &seqRoller{floats: neutralRolls()})
	assert.False(t, out.Dodged)
	assert.False(t, out.Crit)
	assert.Equal(t, 13, out.Damage)
}

func TestResolveAttack_Crit(t *testing.T) {
	att := combatant{Level: 1, Stats: actor.Stats{Strength: 5, Dexterity: 5, Luck: 5}}
	def := combatant{Level: 1, Stats: actor.Stats{Agility: 1}}

	// Crit chance is (5+5)/100 = 0.1; a 0.0 roll lands it. 13*1.5 = 19.5.
	out := resolveAttack(att, def, &seqRoller{floats: []float64{0.99, 0.0, 0.5}})
	assert.True(t, out.Crit)
	assert.Equal(t, 19, out.Damage)
}

func TestResolveAttack_Dodge(t *testing.T) {
	att := combatant{Level: 1, Stats: actor.Stats{Strength: 5, Dexterity: 5}}
	def := combatant{Level: 1, Stats: actor.Stats{Agility: 30}}

	// Dodge chance (30-5)*0.02 = 0.5 caps at 0.3; a 0.1 roll dodges.
	out := resolveAttack(att, def, &seqRoller{floats: []float64{0.1}})
	assert.True(t, out.Dodged)
	assert.Zero(t, out.Damage)
}

func TestResolveAttack_DamageFloor(t *testing.T) {
	att := combatant{Level: 0, Stats: actor.Stats{}}
	def := combatant{Level: 1, Stats: actor.Stats{Vitality: 100}}

	out := resolveAttack(att, def, &seqRoller{floats: neutralRolls()})
	assert.Equal(t, 1, out.Damage, "a landed hit always deals at least 1")
}

func TestResolveAttack_Reduction(t *testing.T) {
	// base 13 against defense 50 is halved: floor(13 * 0.5) = 6.
	att := combatant{Level: 1, Stats: actor.Stats{Strength: 5, Dexterity: 5, Luck: 5}}
	def := combatant{Level: 1, Stats: actor.Stats{Vitality: 50}}

	out := resolveAttack(att, def, &seqRoller{floats: neutralRolls()})
	assert.Equal(t, 6, out.Damage)
}

func TestAttack_BadTargets(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "forest")

	ok, msg := g.Attack(p, "")
	assert.False(t, ok)
	assert.Equal(t, "Attack what?", msg)

	ok, msg = g.Attack(p, "dragon")
	assert.False(t, ok)
	assert.Contains(t, msg, "no dragon here")
}

func TestAttack_KillAwardsRewardsAndLoot(t *testing.T) {
	// Swing (3 floats) kills the 10 hp spider outright, then one loot roll.
	roller := &seqRoller{floats: append(neutralRolls(), 0.5)}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "forest")
	takeEvents(g)

	ok, msg := g.Attack(p, "spider")
	require.True(t, ok)
	assert.Contains(t, msg, "You strike the giant spider for 13 damage.")
	assert.Contains(t, msg, "You have slain the giant spider!")
	assert.Contains(t, msg, "You gain 20 experience.")
	assert.Contains(t, msg, "You loot 5 gold.")
	assert.Contains(t, msg, "The giant spider drops spider silk.")

	assert.Equal(t, 20, p.Experience)
	assert.Equal(t, 55, p.Gold)
	assert.Empty(t, g.world.GetRoom("forest").Monsters)
	assert.NotNil(t, g.world.GetRoom("forest").FindItem("spider silk"), "loot lands on the ground")
	assert.Empty(t, g.encounters, "no encounter survives the kill")
	assert.Equal(t, 1, g.sched.Len(), "respawn timer is armed")
}

func TestAttack_CounterOpensEncounter(t *testing.T) {
	// Two full resolutions: player swing, then the counter.
	roller := &seqRoller{floats: append(neutralRolls(), neutralRolls()...)}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "forest")
	p.Stats.Strength = 1 // base 2+3 = 5, leaves the spider at 5/10

	ok, msg := g.Attack(p, "giant spider")
	require.True(t, ok)
	assert.Contains(t, msg, "You strike the giant spider for 5 damage. (5/10 hp)")
	// Counter: base 2*2+3 = 7, defense 5+1 = 6, floor(7*50/56) = 6.
	assert.Contains(t, msg, "The giant spider hits you for 6 damage. (119/125 hp)")
	assert.Equal(t, 119, p.HP)
	require.Len(t, g.encounters, 1)
	assert.True(t, g.inCombat(p.ID))
}

func TestProcessMonsterTurns(t *testing.T) {
	roller := &seqRoller{floats: append(neutralRolls(), neutralRolls()...)}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "forest")
	p.Stats.Strength = 1
	base := g.clock()

	_, _ = g.Attack(p, "spider")
	takeEvents(g)
	require.Equal(t, 119, p.HP)

	// The monster's turn timer has not elapsed yet.
	g.processMonsterTurns(base.Add(time.Second))
	assert.Equal(t, 119, p.HP)
	assert.Empty(t, takeEvents(g))

	roller.floats = append(roller.floats, neutralRolls()...)
	g.processMonsterTurns(base.Add(monsterTurnInterval))
	assert.Equal(t, 113, p.HP)
	msgs := messagesFor(takeEvents(g), p.ID)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "hits you for 6 damage")
}

func TestProcessMonsterTurns_DropsStaleEncounters(t *testing.T) {
	roller := &seqRoller{floats: append(neutralRolls(), neutralRolls()...)}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "forest")
	p.Stats.Strength = 1
	base := g.clock()

	_, _ = g.Attack(p, "spider")
	require.Len(t, g.encounters, 1)

	// The player walked away; the encounter evaporates without a swing.
	require.NoError(t, g.world.MovePlayer(p, "town_square"))
	hp := p.HP
	g.processMonsterTurns(base.Add(monsterTurnInterval))
	assert.Empty(t, g.encounters)
	assert.Equal(t, hp, p.HP)
}

func TestAttack_PlayerDeathRespawnsAtTown(t *testing.T) {
	roller := &seqRoller{floats: append(neutralRolls(), neutralRolls()...)}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "forest")
	p.Stats.Strength = 1
	p.HP = 3

	ok, msg := g.Attack(p, "spider")
	require.True(t, ok)
	assert.Contains(t, msg, "You have died!")

	assert.Equal(t, p.MaxHP/2, p.HP, "death heals to half max")
	assert.Equal(t, "town_square", p.Location)
	assert.Empty(t, g.encounters, "the respawn heal must not re-register the encounter")
	assert.False(t, g.inCombat(p.ID))
	assert.Same(t, p, g.world.GetRoom("town_square").Players[p.ID])
}

func TestMonsterRespawn(t *testing.T) {
	roller := &seqRoller{floats: append(neutralRolls(), 0.5)}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "forest")
	base := g.clock()

	_, _ = g.Attack(p, "spider")
	require.Empty(t, g.world.GetRoom("forest").Monsters)
	takeEvents(g)

	g.Tick(base.Add(29 * time.Second))
	assert.Empty(t, g.world.GetRoom("forest").Monsters)

	g.Tick(base.Add(30 * time.Second))
	room := g.world.GetRoom("forest")
	require.Len(t, room.Monsters, 1)
	for _, m := range room.Monsters {
		assert.Equal(t, "giant_spider", m.TemplateID)
		assert.Equal(t, m.MaxHP, m.HP, "respawned instance is at full health")
	}
}

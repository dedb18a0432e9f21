package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonsterFromTemplate(t *testing.T) {
	tmpl := &Monster{
		ID:    "giant_spider",
		Name:  "giant spider",
		Level: 1,
		MaxHP: 10,
		Loot:  []LootEntry{{ItemID: "spider_silk", Chance: 0.7}},
	}

	a := NewMonsterFromTemplate(tmpl, "forest_path")
	b := NewMonsterFromTemplate(tmpl, "forest_path")
	require.NotNil(t, a)

	assert.NotEqual(t, a.ID, b.ID, "each spawn gets its own instance id")
	assert.Equal(t, "giant_spider", a.TemplateID)
	assert.Equal(t, "forest_path", a.Room)
	assert.Equal(t, 10, a.HP)

	a.Loot[0].Chance = 0
	assert.Equal(t, 0.7, tmpl.Loot[0].Chance, "loot table is copied, not shared")
}

func TestMonster_ApplyDamage(t *testing.T) {
	m := &Monster{HP: 10, MaxHP: 10}
	assert.True(t, m.ApplyDamage(4))
	assert.Equal(t, 6, m.HP)
	assert.False(t, m.ApplyDamage(100))
	assert.Equal(t, 0, m.HP)
	assert.False(t, m.Alive())
}

func TestMonster_Matches(t *testing.T) {
	m := &Monster{ID: "abc-123", TemplateID: "giant_spider", Name: "giant spider"}
	assert.True(t, m.Matches("giant_spider"))
	assert.True(t, m.Matches("giant"))
	assert.True(t, m.Matches("spider"), "any word of the name matches")
	assert.True(t, m.Matches("SPID"))
	assert.True(t, m.Matches("abc-123"))
	assert.False(t, m.Matches("wolf"))
	assert.False(t, m.Matches("ant"), "prefixes match, substrings do not")
}

func TestNPC_Matches(t *testing.T) {
	n := &NPC{ID: "old_fen", Name: "Old Fen"}
	assert.True(t, n.Matches("old_fen"))
	assert.True(t, n.Matches("fen"))
	assert.True(t, n.Matches("old fen"))
	assert.False(t, n.Matches("marta"))
}

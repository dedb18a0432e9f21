package actor

import (
	"strings"

	"github.com/google/uuid"

	"github.com/embermud/ember/pkg/textfilter"
)

// LootEntry is one independent drop roll on a monster's loot table.
type LootEntry struct {
	ItemID string  `json:"item_id"`
	Chance float64 `json:"chance"` // 0.0 – 1.0
}

// Monster is a hostile creature instance. Monsters are spawned from
// catalog templates at world load or on a respawn schedule, and destroyed
// on death (removed from their room with a respawn timer armed).
type Monster struct {
	ID          string `json:"id"` // instance id, unique per spawn
	TemplateID  string `json:"template_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`

	HP    int   `json:"hp"`
	MaxHP int   `json:"max_hp"`
	Stats Stats `json:"stats"`

	Loot             []LootEntry `json:"loot,omitempty"`
	ExperienceReward int         `json:"experience_reward,omitempty"`
	GoldReward       int         `json:"gold_reward,omitempty"`
	RespawnTime      int         `json:"respawn_time,omitempty"` // seconds; 0 = default policy

	Room string `json:"room,omitempty"`
}

// NewMonsterFromTemplate clones a catalog template into a fresh instance
// with its own id and full health, bound to the given room.
func NewMonsterFromTemplate(template *Monster, room string) *Monster {
	if template == nil {
		return nil
	}
	m := *template
	m.TemplateID = template.TemplateID
	if m.TemplateID == "" {
		m.TemplateID = template.ID
	}
	m.ID = uuid.NewString()
	m.Room = room
	if m.MaxHP <= 0 {
		m.MaxHP = 10
	}
	m.HP = m.MaxHP
	if len(template.Loot) > 0 {
		m.Loot = make([]LootEntry, len(template.Loot))
		copy(m.Loot, template.Loot)
	}
	return &m
}

// Alive reports whether the monster still has hit points.
func (m *Monster) Alive() bool {
	return m.HP > 0
}

// ApplyDamage reduces HP, clamped at zero, and reports whether the monster
// survived.
func (m *Monster) ApplyDamage(dmg int) bool {
	if dmg > 0 {
		m.HP -= dmg
	}
	if m.HP < 0 {
		m.HP = 0
	}
	return m.HP > 0
}

// Matches reports whether player input refers to this monster, by template
// id, instance id, or a case-insensitive prefix of the name or any word in
// it ("spider" finds a "giant spider").
func (m *Monster) Matches(input string) bool {
	if strings.EqualFold(m.TemplateID, strings.TrimSpace(input)) {
		return true
	}
	return textfilter.MatchesName(input, m.ID, m.Name)
}

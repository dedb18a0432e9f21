package actor

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/embermud/ember/pkg/craft"
	"github.com/embermud/ember/pkg/item"
	"github.com/embermud/ember/pkg/quest"
)

// Stats are the six primary attributes shared by players and monsters.
type Stats struct {
	Strength     int `json:"strength"`
	Agility      int `json:"agility"`
	Vitality     int `json:"vitality"`
	Intelligence int `json:"intelligence"`
	Dexterity    int `json:"dexterity"`
	Luck         int `json:"luck"`
}

// Add returns the component-wise sum of two stat blocks.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Strength:     s.Strength + o.Strength,
		Agility:      s.Agility + o.Agility,
		Vitality:     s.Vitality + o.Vitality,
		Intelligence: s.Intelligence + o.Intelligence,
		Dexterity:    s.Dexterity + o.Dexterity,
		Luck:         s.Luck + o.Luck,
	}
}

// statsFromBonuses maps an item's flat bonus map onto a stat block.
func statsFromBonuses(bonuses map[string]int) Stats {
	return Stats{
		Strength:     bonuses["strength"],
		Agility:      bonuses["agility"],
		Vitality:     bonuses["vitality"],
		Intelligence: bonuses["intelligence"],
		Dexterity:    bonuses["dexterity"],
		Luck:         bonuses["luck"],
	}
}

// Player is the persistent representation of a connected character. It is
// created at registration, mutated continuously during play, and persisted
// periodically and on disconnect. Players are never destroyed, only
// deactivated.
//
// Player carries no synchronization; all mutation is serialized by the
// game's single-writer discipline.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClassName  string `json:"class_name,omitempty"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`

	Stats       Stats `json:"stats"`
	StatPoints  int   `json:"stat_points,omitempty"`
	SkillPoints int   `json:"skill_points,omitempty"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	MP    int `json:"mp"`
	MaxMP int `json:"max_mp"`

	Location string `json:"location"`
	Gold     int    `json:"gold"`

	Inventory []*item.Item             `json:"inventory,omitempty"`
	Equipment map[item.Slot]*item.Item `json:"equipment,omitempty"`

	Skills     map[string]*craft.SkillProgress `json:"skills,omitempty"`
	Quests     map[string]*quest.Progress      `json:"quests,omitempty"`
	StoryFlags map[string]bool                 `json:"story_flags,omitempty"`
	Reputation map[string]int                  `json:"reputation,omitempty"`
	Titles     []string                        `json:"titles,omitempty"`

	IsCrafting     bool      `json:"is_crafting,omitempty"`
	CraftingRecipe string    `json:"crafting_recipe,omitempty"`
	CraftingEnds   time.Time `json:"crafting_ends,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitempty"`
}

// NewPlayer creates a fresh level-1 character at the given starting room.
func NewPlayer(name, className, location string) *Player {
	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		ClassName: className,
		Level:     1,
		Stats: Stats{
			Strength:     5,
			Agility:      5,
			Vitality:     5,
			Intelligence: 5,
			Dexterity:    5,
			Luck:         5,
		},
		Location:   location,
		Gold:       50,
		Equipment:  make(map[item.Slot]*item.Item),
		Skills:     make(map[string]*craft.SkillProgress),
		Quests:     make(map[string]*quest.Progress),
		StoryFlags: make(map[string]bool),
		Reputation: make(map[string]int),
		CreatedAt:  time.Now().UTC(),
	}
	p.RecalcDerived()
	p.HP = p.MaxHP
	p.MP = p.MaxMP
	return p
}

// Normalize repairs nil maps after deserialization so callers never have to
// nil-check. It also clamps HP/MP into their legal ranges.
func (p *Player) Normalize() {
	if p.Equipment == nil {
		p.Equipment = make(map[item.Slot]*item.Item)
	}
	if p.Skills == nil {
		p.Skills = make(map[string]*craft.SkillProgress)
	}
	if p.Quests == nil {
		p.Quests = make(map[string]*quest.Progress)
	}
	if p.StoryFlags == nil {
		p.StoryFlags = make(map[string]bool)
	}
	if p.Reputation == nil {
		p.Reputation = make(map[string]int)
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.RecalcDerived()
	p.clampVitals()
}

func (p *Player) clampVitals() {
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	if p.HP < 0 {
		p.HP = 0
	}
	if p.MP > p.MaxMP {
		p.MP = p.MaxMP
	}
	if p.MP < 0 {
		p.MP = 0
	}
}

// RecalcDerived recomputes MaxHP and MaxMP from level and stats.
func (p *Player) RecalcDerived() {
	p.MaxHP = 80 + p.Level*20 + p.Stats.Vitality*5
	p.MaxMP = 40 + p.Level*10 + p.Stats.Intelligence*5
}

// EffectiveStats returns base stats plus equipment bonuses.
func (p *Player) EffectiveStats() Stats {
	out := p.Stats
	for _, it := range p.Equipment {
		if it == nil {
			continue
		}
		out = out.Add(statsFromBonuses(it.Stats))
	}
	return out
}

// ExperienceToNext returns the experience needed to reach the next level.
func ExperienceToNext(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(1.2, float64(level-1))))
}

// AddExperience awards experience and applies any level-ups, looping so a
// single large award can grant several levels. Each level grants 5 stat
// points and 1 skill point, recalculates max HP/MP, and heals the player
// for half of the increase in each.
func (p *Player) AddExperience(xp int) int {
	if xp <= 0 {
		return 0
	}
	p.Experience += xp
	levels := 0
	for p.Experience >= ExperienceToNext(p.Level) {
		p.Experience -= ExperienceToNext(p.Level)
		p.Level++
		levels++
		p.StatPoints += 5
		p.SkillPoints++

		oldMaxHP, oldMaxMP := p.MaxHP, p.MaxMP
		p.RecalcDerived()
		p.HP += (p.MaxHP - oldMaxHP) / 2
		p.MP += (p.MaxMP - oldMaxMP) / 2
		p.clampVitals()
	}
	return levels
}

// ApplyDamage reduces HP, clamped at zero, and reports whether the player
// is still alive.
func (p *Player) ApplyDamage(dmg int) bool {
	if dmg > 0 {
		p.HP -= dmg
	}
	if p.HP < 0 {
		p.HP = 0
	}
	return p.HP > 0
}

// Heal restores HP up to the maximum and returns the amount restored.
func (p *Player) Heal(amount int) int {
	if amount <= 0 || p.HP >= p.MaxHP {
		return 0
	}
	restored := amount
	if p.HP+restored > p.MaxHP {
		restored = p.MaxHP - p.HP
	}
	p.HP += restored
	return restored
}

// RestoreMana restores MP up to the maximum and returns the amount restored.
func (p *Player) RestoreMana(amount int) int {
	if amount <= 0 || p.MP >= p.MaxMP {
		return 0
	}
	restored := amount
	if p.MP+restored > p.MaxMP {
		restored = p.MaxMP - p.MP
	}
	p.MP += restored
	return restored
}

// AddItem places an item instance into the inventory, stacking with an
// existing stack when the item is stackable.
func (p *Player) AddItem(it *item.Item) {
	if it == nil {
		return
	}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	if it.Stackable {
		for _, held := range p.Inventory {
			if held.ID == it.ID && held.Stackable {
				held.Quantity += it.Quantity
				return
			}
		}
	}
	p.Inventory = append(p.Inventory, it)
}

// CountItem returns the total quantity held of the given item id,
// inventory only.
func (p *Player) CountItem(itemID string) int {
	total := 0
	for _, held := range p.Inventory {
		if held.ID == itemID {
			total += held.Quantity
		}
	}
	return total
}

// RemoveItem takes qty of the given item id out of the inventory and
// returns a removed instance carrying that quantity. The removal drains
// across instances, so two unstacked copies satisfy qty 2; a partial
// removal from a stack splits it. On shortfall nothing is removed.
func (p *Player) RemoveItem(itemID string, qty int) (*item.Item, error) {
	if qty <= 0 {
		qty = 1
	}
	have := p.CountItem(itemID)
	if have == 0 {
		return nil, fmt.Errorf("item %s not held", itemID)
	}
	if have < qty {
		name := itemID
		for _, held := range p.Inventory {
			if held.ID == itemID {
				name = held.Name
				break
			}
		}
		return nil, fmt.Errorf("not enough %s: have %d, need %d", name, have, qty)
	}

	var removed *item.Item
	remaining := qty
	kept := make([]*item.Item, 0, len(p.Inventory))
	for _, held := range p.Inventory {
		if held.ID != itemID || remaining == 0 {
			kept = append(kept, held)
			continue
		}
		take := held.Quantity
		if take > remaining {
			take = remaining
		}
		if removed == nil {
			removed = held.Clone()
			removed.Quantity = take
		} else {
			removed.Quantity += take
		}
		remaining -= take
		if held.Quantity > take {
			held.Quantity -= take
			kept = append(kept, held)
		}
	}
	p.Inventory = kept
	return removed, nil
}

// FindInventory resolves a player-typed item reference against the
// inventory, by id or name prefix.
func (p *Player) FindInventory(input string) *item.Item {
	for _, held := range p.Inventory {
		if held.Matches(input) {
			return held
		}
	}
	return nil
}

// HasTool reports whether the given item id is present in the inventory or
// in an equipment slot. Tools are never consumed.
func (p *Player) HasTool(itemID string) bool {
	if p.CountItem(itemID) > 0 {
		return true
	}
	for _, eq := range p.Equipment {
		if eq != nil && eq.ID == itemID {
			return true
		}
	}
	return false
}

// Equip moves an inventory item into its equipment slot. A previously
// equipped item in that slot is returned to the inventory.
func (p *Player) Equip(it *item.Item) error {
	if !it.Equippable() {
		return fmt.Errorf("%s cannot be equipped", it.Name)
	}
	if it.LevelReq > p.Level {
		return fmt.Errorf("%s requires level %d", it.Name, it.LevelReq)
	}
	removed := false
	for idx, held := range p.Inventory {
		if held == it {
			p.Inventory = append(p.Inventory[:idx], p.Inventory[idx+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return fmt.Errorf("%s is not in your inventory", it.Name)
	}
	if prev := p.Equipment[it.Slot]; prev != nil {
		p.AddItem(prev)
	}
	p.Equipment[it.Slot] = it
	return nil
}

// Unequip moves the item in the given slot back into the inventory.
func (p *Player) Unequip(slot item.Slot) (*item.Item, error) {
	it := p.Equipment[slot]
	if it == nil {
		return nil, fmt.Errorf("nothing equipped in the %s slot", slot)
	}
	delete(p.Equipment, slot)
	p.AddItem(it)
	return it, nil
}

// Skill returns the player's progress in the named crafting skill,
// creating a level-1 record on first use.
func (p *Player) Skill(name string) *craft.SkillProgress {
	sp, ok := p.Skills[name]
	if !ok {
		sp = &craft.SkillProgress{Level: 1}
		p.Skills[name] = sp
	}
	return sp
}

// QuestProgress returns the player's record for a quest id, or nil if the
// quest was never started.
func (p *Player) QuestProgress(questID string) *quest.Progress {
	return p.Quests[questID]
}

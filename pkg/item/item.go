package item

import (
	"strings"

	"github.com/embermud/ember/pkg/textfilter"
)

// Type classifies an item for inventory and command handling.
type Type string

const (
	TypeWeapon     Type = "weapon"
	TypeArmor      Type = "armor"
	TypeConsumable Type = "consumable"
	TypeMisc       Type = "misc"
	TypeTrophy     Type = "trophy"
	TypeFixture    Type = "fixture"
)

// Slot identifies an equipment slot. Each slot holds at most one item.
type Slot string

const (
	SlotWeapon    Slot = "weapon"
	SlotArmor     Slot = "armor"
	SlotHelmet    Slot = "helmet"
	SlotBoots     Slot = "boots"
	SlotAccessory Slot = "accessory"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotWeapon, SlotArmor, SlotHelmet, SlotBoots, SlotAccessory}

// ParseSlot resolves a player-typed slot name. Returns false for unknown slots.
func ParseSlot(s string) (Slot, bool) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotWeapon:
		return SlotWeapon, true
	case SlotArmor:
		return SlotArmor, true
	case SlotHelmet:
		return SlotHelmet, true
	case SlotBoots:
		return SlotBoots, true
	case SlotAccessory:
		return SlotAccessory, true
	}
	return "", false
}

// Effects describes what happens when a consumable item is used.
type Effects struct {
	Heal        int `json:"heal,omitempty"`
	RestoreMana int `json:"restore_mana,omitempty"`
}

// Item is a single item instance. An item lives in exactly one place at a
// time: a room's ground list, a player's inventory, or an equipment slot.
// Transfers move the instance; they never copy it.
type Item struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Type        Type           `json:"type"`
	Slot        Slot           `json:"slot,omitempty"`
	Stats       map[string]int `json:"stats,omitempty"`
	Effects     *Effects       `json:"effects,omitempty"`
	LevelReq    int            `json:"level_req,omitempty"`
	Stackable   bool           `json:"stackable,omitempty"`
	Quantity    int            `json:"quantity"`
	Quality     int            `json:"quality,omitempty"`
	Durability  int            `json:"durability,omitempty"`
	Value       int            `json:"value,omitempty"`
}

// Clone returns an independent copy of the item. Used when instantiating
// catalog templates so runtime mutation never touches the catalog.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	if i.Stats != nil {
		out.Stats = make(map[string]int, len(i.Stats))
		for k, v := range i.Stats {
			out.Stats[k] = v
		}
	}
	if i.Effects != nil {
		fx := *i.Effects
		out.Effects = &fx
	}
	if out.Quantity <= 0 {
		out.Quantity = 1
	}
	return &out
}

// Equippable reports whether the item can occupy an equipment slot.
func (i *Item) Equippable() bool {
	return i.Slot != "" && (i.Type == TypeWeapon || i.Type == TypeArmor)
}

// Matches reports whether the given player input refers to this item,
// by id or by a case-insensitive prefix of the name or any word in it.
func (i *Item) Matches(input string) bool {
	return textfilter.MatchesName(input, i.ID, i.Name)
}

// ScaleQuality applies a crafted quality value to the item's stat and
// durability values. Quality 50 is the baseline; higher quality scales
// values up proportionally, lower scales them down.
func (i *Item) ScaleQuality(quality int) {
	if quality < 10 {
		quality = 10
	} else if quality > 100 {
		quality = 100
	}
	i.Quality = quality
	factor := float64(quality) / 50.0
	for k, v := range i.Stats {
		scaled := int(float64(v) * factor)
		if v > 0 && scaled < 1 {
			scaled = 1
		}
		i.Stats[k] = scaled
	}
	if i.Durability > 0 {
		i.Durability = int(float64(i.Durability) * factor)
		if i.Durability < 1 {
			i.Durability = 1
		}
	}
}

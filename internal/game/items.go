package game

import (
	"fmt"
	"strings"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
	"github.com/embermud/ember/pkg/item"
	"github.com/embermud/ember/pkg/quest"
)

// PickUp transfers an item from the room's ground into the player's
// inventory. Ownership moves with the instance; nothing is copied.
func (g *Game) PickUp(p *actor.Player, input string) (bool, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, "Get what?"
	}
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return false, "You are nowhere."
	}
	if ground := room.FindItem(input); ground != nil && ground.Type == item.TypeFixture {
		return false, fmt.Sprintf("The %s is fixed in place.", ground.Name)
	}
	it := room.RemoveItem(input)
	if it == nil {
		return false, fmt.Sprintf("There is no %s here.", input)
	}
	p.AddItem(it)
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveCollect, Target: it.ID, Quantity: it.Quantity})
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(room.ID, p.ID),
		fmt.Sprintf("%s picks up %s.", p.Name, it.Name),
	))
	g.markDirty(p.ID)
	return true, fmt.Sprintf("You pick up %s.", it.Name)
}

// Drop transfers an item from the inventory onto the room's ground.
func (g *Game) Drop(p *actor.Player, input string) (bool, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, "Drop what?"
	}
	held := p.FindInventory(input)
	if held == nil {
		return false, fmt.Sprintf("You are not carrying a %s.", input)
	}
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return false, "You are nowhere."
	}
	it, err := p.RemoveItem(held.ID, held.Quantity)
	if err != nil {
		return false, err.Error()
	}
	room.AddItem(it)
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(room.ID, p.ID),
		fmt.Sprintf("%s drops %s.", p.Name, it.Name),
	))
	g.markDirty(p.ID)
	return true, fmt.Sprintf("You drop %s.", it.Name)
}

// UseItem consumes one unit of a consumable, applying its effects.
func (g *Game) UseItem(p *actor.Player, input string) (bool, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, "Use what?"
	}
	held := p.FindInventory(input)
	if held == nil {
		return false, fmt.Sprintf("You are not carrying a %s.", input)
	}
	if held.Type != item.TypeConsumable || held.Effects == nil {
		return false, fmt.Sprintf("You can't figure out how to use %s.", held.Name)
	}

	effects := *held.Effects
	name := held.Name
	if _, err := p.RemoveItem(held.ID, 1); err != nil {
		return false, err.Error()
	}

	var parts []string
	if effects.Heal > 0 {
		restored := p.Heal(effects.Heal)
		parts = append(parts, fmt.Sprintf("%d hp restored (%d/%d)", restored, p.HP, p.MaxHP))
	}
	if effects.RestoreMana > 0 {
		restored := p.RestoreMana(effects.RestoreMana)
		parts = append(parts, fmt.Sprintf("%d mp restored (%d/%d)", restored, p.MP, p.MaxMP))
	}
	g.markDirty(p.ID)
	if len(parts) == 0 {
		return true, fmt.Sprintf("You use %s. Nothing obvious happens.", name)
	}
	return true, fmt.Sprintf("You use %s: %s.", name, strings.Join(parts, ", "))
}

// EquipItem moves an inventory item into its slot, swapping out any
// previous occupant. Level requirements are checked before any mutation.
func (g *Game) EquipItem(p *actor.Player, input string) (bool, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, "Equip what?"
	}
	held := p.FindInventory(input)
	if held == nil {
		return false, fmt.Sprintf("You are not carrying a %s.", input)
	}
	if err := p.Equip(held); err != nil {
		return false, err.Error()
	}
	g.markDirty(p.ID)
	return true, fmt.Sprintf("You equip %s.", held.Name)
}

// UnequipSlot empties an equipment slot back into the inventory.
func (g *Game) UnequipSlot(p *actor.Player, input string) (bool, string) {
	slot, ok := item.ParseSlot(input)
	if !ok {
		return false, fmt.Sprintf("'%s' is not an equipment slot. Slots: weapon, armor, helmet, boots, accessory.", strings.TrimSpace(input))
	}
	it, err := p.Unequip(slot)
	if err != nil {
		return false, err.Error()
	}
	g.markDirty(p.ID)
	return true, fmt.Sprintf("You unequip %s.", it.Name)
}

// InventoryText renders the player's carried and equipped items.
func (g *Game) InventoryText(p *actor.Player) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Gold: %d", p.Gold))
	sb.WriteString("\nEquipped:")
	empty := true
	for _, slot := range item.Slots {
		if it := p.Equipment[slot]; it != nil {
			sb.WriteString(fmt.Sprintf("\n  %-10s %s", slot+":", it.Name))
			empty = false
		}
	}
	if empty {
		sb.WriteString(" nothing")
	}
	sb.WriteString("\nCarrying:")
	if len(p.Inventory) == 0 {
		sb.WriteString(" nothing")
		return sb.String()
	}
	for _, it := range p.Inventory {
		if it.Stackable && it.Quantity > 1 {
			sb.WriteString(fmt.Sprintf("\n  %s ×%d", it.Name, it.Quantity))
		} else {
			sb.WriteString(fmt.Sprintf("\n  %s", it.Name))
		}
	}
	return sb.String()
}

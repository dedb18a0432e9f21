package game

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/craft"
	"github.com/embermud/ember/pkg/event"
)

// maxEffectiveSuccessRate caps skill-boosted success; recipes with a base
// rate of 100 or more are guaranteed and skip the roll entirely.
const maxEffectiveSuccessRate = 95

// RecipeByInput resolves player input to a recipe by id or name prefix.
func (g *Game) RecipeByInput(input string) *craft.Recipe {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}
	if r, ok := g.data.Recipes[input]; ok {
		return r
	}
	var match *craft.Recipe
	for _, r := range g.data.Recipes {
		name := strings.ToLower(r.Name)
		if name == input {
			return r
		}
		if strings.HasPrefix(name, input) {
			if match != nil {
				return nil
			}
			match = r
		}
	}
	return match
}

// StartCraft validates and begins a crafting attempt. The player is
// rejected before any mutation if already crafting, under-skilled, or
// missing any material or tool; nothing is deducted on rejection.
// Completion is deferred through the scheduler so the player may act
// while the craft runs, but cannot start another.
func (g *Game) StartCraft(p *actor.Player, input string) (bool, string) {
	r := g.RecipeByInput(input)
	if r == nil {
		return false, fmt.Sprintf("You don't know how to make '%s'.", strings.TrimSpace(input))
	}
	if p.IsCrafting {
		return false, "You are already crafting something."
	}
	skill := p.Skill(r.Skill)
	if skill.Level < r.SkillLevel {
		return false, fmt.Sprintf("%s requires %s level %d (you are %d).", r.Name, r.Skill, r.SkillLevel, skill.Level)
	}
	for _, mat := range r.Materials {
		if p.CountItem(mat.ItemID) < mat.Quantity {
			return false, fmt.Sprintf("You need %d× %s.", mat.Quantity, g.itemName(mat.ItemID))
		}
	}
	for _, tool := range r.Tools {
		if !p.HasTool(tool) {
			return false, fmt.Sprintf("You need a %s to make that.", g.itemName(tool))
		}
	}

	now := g.clock()
	duration := time.Duration(r.Time) * time.Second
	p.IsCrafting = true
	p.CraftingRecipe = r.ID
	p.CraftingEnds = now.Add(duration)
	g.markDirty(p.ID)

	playerID, recipeID, ends := p.ID, r.ID, p.CraftingEnds
	g.sched.ScheduleAfter(now, duration, func() {
		g.completeCraft(playerID, recipeID, ends)
	})
	g.logger.Info("Craft started", "player_id", p.ID, "recipe", r.ID)
	return true, fmt.Sprintf("You begin crafting %s. (%d seconds)", r.Name, r.Time)
}

// completeCraft resolves a deferred crafting attempt. Substantial real
// time has passed since StartCraft, so the state is re-validated: the
// player must still be online and still be mid-craft on the attempt this
// task was armed for. The deadline comparison keeps an orphaned task from
// an abandoned attempt from finishing a newer craft of the same recipe
// early. The crafting flag is always cleared on completion, success or
// failure.
func (g *Game) completeCraft(playerID, recipeID string, ends time.Time) {
	p := g.world.GetPlayer(playerID)
	if p == nil {
		return
	}
	if !p.IsCrafting || p.CraftingRecipe != recipeID || !p.CraftingEnds.Equal(ends) {
		return
	}
	r, ok := g.data.Recipes[recipeID]
	if !ok {
		g.expireStaleCraft(p)
		return
	}

	p.IsCrafting = false
	p.CraftingRecipe = ""
	p.CraftingEnds = time.Time{}

	skill := p.Skill(r.Skill)
	def := g.data.SkillDef(r.Skill)

	var success bool
	if r.SuccessRate >= 100 {
		success = true
	} else {
		effective := float64(r.SuccessRate) + float64(skill.Level)*def.SuccessRatePerLevel
		if effective > maxEffectiveSuccessRate {
			effective = maxEffectiveSuccessRate
		}
		if effective > 0 {
			success = float64(g.roller.IntN(100)) < effective
		}
	}

	if success {
		for _, mat := range r.Materials {
			if _, err := p.RemoveItem(mat.ItemID, mat.Quantity); err != nil {
				// Materials were verified at start; a shortfall here means
				// the player spent them mid-craft. The craft still consumes
				// what remains.
				g.logger.Warn("Craft material shortfall", "player_id", p.ID, "recipe", r.ID, "material", mat.ItemID)
				if held := p.CountItem(mat.ItemID); held > 0 {
					_, _ = p.RemoveItem(mat.ItemID, held)
				}
			}
		}

		quality := 50 + int(float64(skill.Level)*def.QualityPerLevel) + (g.roller.IntN(21) - 10)
		if quality < 10 {
			quality = 10
		} else if quality > 100 {
			quality = 100
		}

		qty := r.Result.Quantity
		if qty <= 0 {
			qty = 1
		}
		tmpl, ok := g.data.Items[r.Result.ItemID]
		if !ok {
			g.logger.Error("Recipe result references unknown item", "recipe", r.ID, "item", r.Result.ItemID)
			g.emit(event.Message(p.ID, "Your crafting attempt fizzles into nothing."))
			return
		}
		result := tmpl.Clone()
		result.Quantity = qty
		result.ScaleQuality(quality)
		p.AddItem(result)
		g.updateQuestProgress(p, questEvent{Type: "collect", Target: result.ID, Quantity: qty})

		xp := int(float64(r.BaseExperience()) * def.ExperienceMultiplier)
		levels := skill.AddExperience(xp)

		msg := fmt.Sprintf("You finish crafting %s (quality %d). +%d %s xp", result.Name, quality, xp, r.Skill)
		if levels > 0 {
			msg += fmt.Sprintf("\nYour %s skill is now level %d!", r.Skill, skill.Level)
		}
		g.emit(event.Message(p.ID, msg))
		g.logger.Info("Craft succeeded", "player_id", p.ID, "recipe", r.ID, "quality", quality)
	} else {
		// Failure ruins a random fraction (up to half) of each material.
		for _, mat := range r.Materials {
			lost := int(float64(mat.Quantity) * g.roller.Float64() * 0.5)
			if lost <= 0 {
				continue
			}
			if held := p.CountItem(mat.ItemID); held < lost {
				lost = held
			}
			if lost > 0 {
				_, _ = p.RemoveItem(mat.ItemID, lost)
			}
		}
		xp := int(float64(r.BaseExperience()) * def.ExperienceMultiplier * 0.2)
		skill.AddExperience(xp)
		g.emit(event.Message(p.ID, fmt.Sprintf("Your attempt to craft %s fails, ruining some materials. +%d %s xp", r.Name, xp, r.Skill)))
		g.logger.Info("Craft failed", "player_id", p.ID, "recipe", r.ID)
	}
	g.markDirty(p.ID)
}

func (g *Game) itemName(itemID string) string {
	if tmpl, ok := g.data.Items[itemID]; ok {
		return tmpl.Name
	}
	return itemID
}

// CraftList renders the recipes the player can see, grouped by skill.
func (g *Game) CraftList(p *actor.Player) string {
	ids := make([]string, 0, len(g.data.Recipes))
	for id := range g.data.Recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return "No recipes are known in this realm."
	}
	var sb strings.Builder
	sb.WriteString("Known recipes:")
	for _, id := range ids {
		r := g.data.Recipes[id]
		marker := " "
		if p.Skill(r.Skill).Level >= r.SkillLevel {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("\n %s %-20s (%s %d)", marker, r.Name, r.Skill, r.SkillLevel))
	}
	sb.WriteString("\nRecipes marked * are within your skill. Try: craft show <name>")
	return sb.String()
}

// CraftShow renders one recipe's requirements.
func (g *Game) CraftShow(p *actor.Player, input string) (bool, string) {
	r := g.RecipeByInput(input)
	if r == nil {
		return false, fmt.Sprintf("No recipe called '%s'.", strings.TrimSpace(input))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s %d, %ds, %d%% base success)", r.Name, r.Skill, r.SkillLevel, r.Time, r.SuccessRate))
	sb.WriteString("\nMaterials:")
	for _, mat := range r.Materials {
		sb.WriteString(fmt.Sprintf("\n  %d× %s (have %d)", mat.Quantity, g.itemName(mat.ItemID), p.CountItem(mat.ItemID)))
	}
	if len(r.Tools) > 0 {
		sb.WriteString("\nTools:")
		for _, tool := range r.Tools {
			have := "missing"
			if p.HasTool(tool) {
				have = "ready"
			}
			sb.WriteString(fmt.Sprintf("\n  %s (%s)", g.itemName(tool), have))
		}
	}
	sb.WriteString(fmt.Sprintf("\nProduces: %d× %s", max(1, r.Result.Quantity), g.itemName(r.Result.ItemID)))
	return true, sb.String()
}

// CraftSkills renders the player's crafting skill levels.
func (g *Game) CraftSkills(p *actor.Player) string {
	if len(p.Skills) == 0 {
		return "You have not practiced any crafts yet."
	}
	names := make([]string, 0, len(p.Skills))
	for name := range p.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("Crafting skills:")
	for _, name := range names {
		sp := p.Skills[name]
		sb.WriteString(fmt.Sprintf("\n  %-16s level %d (%d/%d xp)", name, sp.Level, sp.Experience, sp.ExperienceToNext()))
	}
	return sb.String()
}

// CraftStatus reports the player's current crafting job, if any.
func (g *Game) CraftStatus(p *actor.Player) string {
	if !p.IsCrafting {
		return "You are not crafting anything."
	}
	r, ok := g.data.Recipes[p.CraftingRecipe]
	name := p.CraftingRecipe
	if ok {
		name = r.Name
	}
	remaining := p.CraftingEnds.Sub(g.clock()).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("You are crafting %s (about %s left).", name, remaining)
}

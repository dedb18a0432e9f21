package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/event"
	"github.com/embermud/ember/pkg/quest"
)

// Reason codes for refused quest starts. The first unmet condition wins.
const (
	ReasonAlreadyActive          = "already_active"
	ReasonAlreadyCompleted       = "already_completed"
	ReasonOnCooldown             = "on_cooldown"
	ReasonInsufficientLevel      = "insufficient_level"
	ReasonMissingPrerequisite    = "missing_prerequisite_quest"
	ReasonMissingItem            = "missing_item"
	ReasonInsufficientReputation = "insufficient_reputation"
	ReasonMissingStoryFlag       = "missing_story_flag"
)

// questEvent is the internal shape fed to the objective matcher by combat
// (kill), inventory ops (collect), movement (explore), and dialogue
// (talk_to, deliver).
type questEvent struct {
	Type     quest.ObjectiveType
	Target   string
	Quantity int
}

// QuestByInput resolves player input to a quest template by id or
// case-insensitive name prefix.
func (g *Game) QuestByInput(input string) *quest.Quest {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}
	if q, ok := g.data.Quests[input]; ok {
		return q
	}
	var match *quest.Quest
	for _, q := range g.data.Quests {
		name := strings.ToLower(q.Name)
		if name == input {
			return q
		}
		if strings.HasPrefix(name, input) {
			if match != nil {
				return nil // ambiguous prefix
			}
			match = q
		}
	}
	return match
}

// CanPlayerStart evaluates every prerequisite of a quest for a player,
// failing fast with a distinguishing reason code on the first unmet
// condition.
func (g *Game) CanPlayerStart(p *actor.Player, q *quest.Quest) (bool, string) {
	if prog := p.QuestProgress(q.ID); prog != nil {
		switch prog.Status {
		case quest.StatusActive, quest.StatusCompleted:
			return false, ReasonAlreadyActive
		case quest.StatusTurnedIn:
			if !q.Repeatable {
				return false, ReasonAlreadyCompleted
			}
			if !prog.CooldownOver(q, g.clock()) {
				return false, ReasonOnCooldown
			}
		}
	}
	if q.Prerequisites.Level > 0 && p.Level < q.Prerequisites.Level {
		return false, ReasonInsufficientLevel
	}
	for _, id := range q.Prerequisites.Quests {
		prog := p.QuestProgress(id)
		if prog == nil || prog.Status != quest.StatusTurnedIn {
			return false, ReasonMissingPrerequisite
		}
	}
	for _, req := range q.Prerequisites.Items {
		need := req.Quantity
		if need <= 0 {
			need = 1
		}
		if p.CountItem(req.ItemID) < need {
			return false, ReasonMissingItem
		}
	}
	// Iterate reputation thresholds in stable order so the failing
	// faction is deterministic.
	factions := make([]string, 0, len(q.Prerequisites.Reputation))
	for f := range q.Prerequisites.Reputation {
		factions = append(factions, f)
	}
	sort.Strings(factions)
	for _, f := range factions {
		if p.Reputation[f] < q.Prerequisites.Reputation[f] {
			return false, ReasonInsufficientReputation
		}
	}
	for _, flag := range q.Prerequisites.StoryFlags {
		if !p.StoryFlags[flag] {
			return false, ReasonMissingStoryFlag
		}
	}
	return true, ""
}

// refusalMessage renders a reason code for the player.
func refusalMessage(q *quest.Quest, reason string) string {
	switch reason {
	case ReasonAlreadyActive:
		return fmt.Sprintf("You are already on '%s'.", q.Name)
	case ReasonAlreadyCompleted:
		return fmt.Sprintf("You have already completed '%s'.", q.Name)
	case ReasonOnCooldown:
		return fmt.Sprintf("It is too soon to take '%s' again.", q.Name)
	case ReasonInsufficientLevel:
		return fmt.Sprintf("You must be level %d for '%s'.", q.Prerequisites.Level, q.Name)
	case ReasonMissingPrerequisite:
		return fmt.Sprintf("You are not ready for '%s' yet.", q.Name)
	case ReasonMissingItem:
		return fmt.Sprintf("You lack an item required for '%s'.", q.Name)
	case ReasonInsufficientReputation:
		return fmt.Sprintf("Your reputation is too low for '%s'.", q.Name)
	case ReasonMissingStoryFlag:
		return fmt.Sprintf("Something must happen before '%s' opens to you.", q.Name)
	default:
		return fmt.Sprintf("You cannot take '%s'.", q.Name)
	}
}

// AcceptQuest starts a quest for a player. When the quest names a giver
// NPC, the player must be in that NPC's room.
func (g *Game) AcceptQuest(p *actor.Player, input string) (bool, string) {
	q := g.QuestByInput(input)
	if q == nil {
		return false, fmt.Sprintf("No quest called '%s'.", strings.TrimSpace(input))
	}
	if q.GiverNPC != "" {
		room := g.world.GetRoom(p.Location)
		if room == nil || room.NPCs[q.GiverNPC] == nil {
			return false, fmt.Sprintf("Nobody here offers '%s'.", q.Name)
		}
	}
	if ok, reason := g.CanPlayerStart(p, q); !ok {
		return false, refusalMessage(q, reason)
	}
	prog := quest.NewProgress(q, g.clock())
	if prev := p.QuestProgress(q.ID); prev != nil {
		prog.Completions = prev.Completions
	}
	p.Quests[q.ID] = prog
	g.markDirty(p.ID)
	g.logger.Info("Quest accepted", "player_id", p.ID, "quest", q.ID)
	return true, fmt.Sprintf("Quest accepted: %s\n%s", q.Name, q.Description)
}

// AbandonQuest drops an active quest, discarding all progress.
func (g *Game) AbandonQuest(p *actor.Player, input string) (bool, string) {
	q := g.QuestByInput(input)
	if q == nil {
		return false, fmt.Sprintf("No quest called '%s'.", strings.TrimSpace(input))
	}
	prog := p.QuestProgress(q.ID)
	if prog == nil || (prog.Status != quest.StatusActive && prog.Status != quest.StatusCompleted) {
		return false, fmt.Sprintf("You are not on '%s'.", q.Name)
	}
	delete(p.Quests, q.ID)
	g.markDirty(p.ID)
	return true, fmt.Sprintf("You abandon '%s'.", q.Name)
}

// TurnInQuest grants rewards for a completed quest. When the quest names a
// turn-in NPC, the player must be in that NPC's room. Collected objective
// items are handed over.
func (g *Game) TurnInQuest(p *actor.Player, input string) (bool, string) {
	q := g.QuestByInput(input)
	if q == nil {
		return false, fmt.Sprintf("No quest called '%s'.", strings.TrimSpace(input))
	}
	prog := p.QuestProgress(q.ID)
	if prog == nil || prog.Status == quest.StatusNotStarted {
		return false, fmt.Sprintf("You are not on '%s'.", q.Name)
	}
	if prog.Status == quest.StatusTurnedIn {
		return false, fmt.Sprintf("You have already turned in '%s'.", q.Name)
	}
	if prog.Status != quest.StatusCompleted {
		return false, fmt.Sprintf("'%s' is not finished yet. Check your objectives.", q.Name)
	}
	if q.TurnInNPC != "" {
		room := g.world.GetRoom(p.Location)
		if room == nil || room.NPCs[q.TurnInNPC] == nil {
			npcName := q.TurnInNPC
			if npc := g.findNPC(q.TurnInNPC); npc != nil {
				npcName = npc.Name
			}
			return false, fmt.Sprintf("You must bring '%s' to %s.", q.Name, npcName)
		}
	}

	// Hand over collected items, best effort; progress counters are the
	// source of truth for completion.
	for _, obj := range q.Objectives {
		if obj.Type != quest.ObjectiveCollect {
			continue
		}
		held := p.CountItem(obj.Target)
		if held > obj.Required {
			held = obj.Required
		}
		if held > 0 {
			_, _ = p.RemoveItem(obj.Target, held)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Quest complete: %s", q.Name))
	if q.Rewards.Experience > 0 {
		levels := p.AddExperience(q.Rewards.Experience)
		sb.WriteString(fmt.Sprintf("\nYou gain %d experience.", q.Rewards.Experience))
		if levels > 0 {
			sb.WriteString(fmt.Sprintf("\nYou are now level %d!", p.Level))
		}
	}
	if q.Rewards.Gold > 0 {
		p.Gold += q.Rewards.Gold
		sb.WriteString(fmt.Sprintf("\nYou receive %d gold.", q.Rewards.Gold))
	}
	for _, grant := range q.Rewards.Items {
		if g.giveItem(p, grant.ItemID, grant.Quantity) {
			if tmpl := g.data.Items[grant.ItemID]; tmpl != nil {
				sb.WriteString(fmt.Sprintf("\nYou receive %s.", tmpl.Name))
			}
		}
	}
	for faction, delta := range q.Rewards.Reputation {
		p.Reputation[faction] += delta
	}
	for _, title := range q.Rewards.Titles {
		p.Titles = appendUnique(p.Titles, title)
	}

	prog.Status = quest.StatusTurnedIn
	prog.TurnedInAt = g.clock()
	prog.Completions++
	g.markDirty(p.ID)
	g.logger.Info("Quest turned in", "player_id", p.ID, "quest", q.ID)
	return true, sb.String()
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}

func (g *Game) findNPC(npcID string) *actor.NPC {
	for _, n := range g.data.NPCs {
		if n.ID == npcID {
			return n
		}
	}
	return nil
}

// updateQuestProgress is the event-driven objective matcher. For every
// active quest of the player, every incomplete objective whose type and
// target match the event advances by the event quantity, clamped at the
// required count. Quests whose required objectives are all complete flip
// to completed automatically; turn-in stays a separate step.
func (g *Game) updateQuestProgress(p *actor.Player, ev questEvent) {
	if ev.Quantity <= 0 {
		ev.Quantity = 1
	}
	for questID, prog := range p.Quests {
		if prog.Status != quest.StatusActive {
			continue
		}
		q, ok := g.data.Quests[questID]
		if !ok {
			continue
		}
		advanced := false
		for i, obj := range q.Objectives {
			if obj.Type != ev.Type {
				continue
			}
			if obj.Target != "" && obj.Target != ev.Target {
				continue
			}
			if prog.Advance(q, i, ev.Quantity) == 0 {
				continue
			}
			advanced = true
			label := obj.Description
			if label == "" {
				label = fmt.Sprintf("%s %s", obj.Type, obj.Target)
			}
			g.emit(event.Message(p.ID, fmt.Sprintf("[%s] %s: %d/%d", q.Name, label, prog.Objectives[i], obj.Required)))
		}
		if !advanced {
			continue
		}
		if prog.AllRequiredComplete(q) {
			prog.Status = quest.StatusCompleted
			prog.CompletedAt = g.clock()
			turnIn := ""
			if npc := g.findNPC(q.TurnInNPC); npc != nil {
				turnIn = fmt.Sprintf(" Return to %s to turn it in.", npc.Name)
			}
			g.emit(event.Message(p.ID, fmt.Sprintf("Quest '%s' is complete!%s", q.Name, turnIn)))
		}
		g.markDirty(p.ID)
	}
}

// TalkToNPC runs dialogue and advances talk_to and deliver objectives.
func (g *Game) TalkToNPC(p *actor.Player, input string) (bool, string) {
	room := g.world.GetRoom(p.Location)
	if room == nil {
		return false, "You are nowhere."
	}
	npc := room.FindNPC(input)
	if npc == nil {
		return false, fmt.Sprintf("There is no %s here to talk to.", strings.TrimSpace(input))
	}

	var sb strings.Builder
	if len(npc.Dialogue) > 0 {
		line := npc.Dialogue[g.roller.IntN(len(npc.Dialogue))]
		sb.WriteString(fmt.Sprintf("%s says, \"%s\"", npc.Name, line))
	} else {
		sb.WriteString(fmt.Sprintf("%s nods at you.", npc.Name))
	}

	for _, questID := range npc.Quests {
		q, ok := g.data.Quests[questID]
		if !ok {
			continue
		}
		prog := p.QuestProgress(questID)
		switch {
		case prog != nil && prog.Status == quest.StatusCompleted && q.TurnInNPC == npc.ID:
			sb.WriteString(fmt.Sprintf("\n%s awaits your report on '%s'. (turnin %s)", npc.Name, q.Name, q.ID))
		case npc.GivesQuest(questID) && q.GiverNPC == npc.ID:
			if ok, _ := g.CanPlayerStart(p, q); ok {
				sb.WriteString(fmt.Sprintf("\n%s has a task for you: '%s'. (accept %s)", npc.Name, q.Name, q.ID))
			}
		}
	}

	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveTalkTo, Target: npc.ID, Quantity: 1})
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveDeliver, Target: npc.ID, Quantity: 1})
	g.emit(event.RoomBroadcast(
		g.world.RoomOccupantIDs(room.ID, p.ID),
		fmt.Sprintf("%s talks with %s.", p.Name, npc.Name),
	))
	return true, sb.String()
}

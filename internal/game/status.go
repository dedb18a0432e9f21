package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/quest"
)

// ScoreText renders the player's character sheet.
func (g *Game) ScoreText(p *actor.Player) string {
	eff := p.EffectiveStats()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s, level %d", p.Name, p.Level))
	if len(p.Titles) > 0 {
		sb.WriteString(fmt.Sprintf(" \"%s\"", p.Titles[len(p.Titles)-1]))
	}
	sb.WriteString(fmt.Sprintf("\nHP %d/%d  MP %d/%d  Gold %d", p.HP, p.MaxHP, p.MP, p.MaxMP, p.Gold))
	sb.WriteString(fmt.Sprintf("\nExperience %d/%d", p.Experience, actor.ExperienceToNext(p.Level)))
	sb.WriteString(fmt.Sprintf("\nSTR %d  AGI %d  VIT %d  INT %d  DEX %d  LUK %d",
		eff.Strength, eff.Agility, eff.Vitality, eff.Intelligence, eff.Dexterity, eff.Luck))
	if p.StatPoints > 0 || p.SkillPoints > 0 {
		sb.WriteString(fmt.Sprintf("\nUnspent: %d stat points, %d skill points", p.StatPoints, p.SkillPoints))
	}
	if len(p.Reputation) > 0 {
		factions := make([]string, 0, len(p.Reputation))
		for f := range p.Reputation {
			factions = append(factions, f)
		}
		sort.Strings(factions)
		sb.WriteString("\nReputation:")
		for _, f := range factions {
			sb.WriteString(fmt.Sprintf(" %s %+d", f, p.Reputation[f]))
		}
	}
	return sb.String()
}

// WhoText lists everyone online.
func (g *Game) WhoText() string {
	players := g.world.Players()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Online (%d):", len(players)))
	for _, p := range players {
		sb.WriteString(fmt.Sprintf("\n  %s (level %d) - %s", p.Name, p.Level, g.roomName(p.Location)))
	}
	return sb.String()
}

// QuestLog lists the player's quests grouped by status.
func (g *Game) QuestLog(p *actor.Player) string {
	type entry struct {
		q    *quest.Quest
		prog *quest.Progress
	}
	var active, done, turned []entry
	for id, prog := range p.Quests {
		q, ok := g.data.Quests[id]
		if !ok {
			continue
		}
		switch prog.Status {
		case quest.StatusActive:
			active = append(active, entry{q, prog})
		case quest.StatusCompleted:
			done = append(done, entry{q, prog})
		case quest.StatusTurnedIn:
			turned = append(turned, entry{q, prog})
		}
	}
	byName := func(list []entry) {
		sort.Slice(list, func(i, j int) bool { return list[i].q.Name < list[j].q.Name })
	}
	byName(active)
	byName(done)
	byName(turned)

	if len(active)+len(done)+len(turned) == 0 {
		return "You have no quests. NPCs with work for you will mention it."
	}
	var sb strings.Builder
	sb.WriteString("Quest log:")
	for _, e := range done {
		sb.WriteString(fmt.Sprintf("\n  [ready to turn in] %s", e.q.Name))
	}
	for _, e := range active {
		sb.WriteString(fmt.Sprintf("\n  [active] %s", e.q.Name))
	}
	for _, e := range turned {
		sb.WriteString(fmt.Sprintf("\n  [done] %s", e.q.Name))
	}
	return sb.String()
}

// QuestDetail renders one quest's description and objective progress.
func (g *Game) QuestDetail(p *actor.Player, input string) (bool, string) {
	q := g.QuestByInput(input)
	if q == nil {
		return false, fmt.Sprintf("No quest called '%s'.", strings.TrimSpace(input))
	}
	prog := p.QuestProgress(q.ID)
	var sb strings.Builder
	sb.WriteString(q.Name)
	if q.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(q.Description)
	}
	if prog == nil {
		sb.WriteString("\nYou have not taken this quest.")
		return true, sb.String()
	}
	sb.WriteString(fmt.Sprintf("\nStatus: %s", prog.Status))
	sb.WriteString(g.objectiveLines(q, prog))
	return true, sb.String()
}

// ObjectivesText renders objective progress for every active quest.
func (g *Game) ObjectivesText(p *actor.Player) string {
	ids := make([]string, 0, len(p.Quests))
	for id, prog := range p.Quests {
		if prog.Status == quest.StatusActive || prog.Status == quest.StatusCompleted {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "You have no active objectives."
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, nj := ids[i], ids[j]
		if qi, ok := g.data.Quests[ids[i]]; ok {
			ni = qi.Name
		}
		if qj, ok := g.data.Quests[ids[j]]; ok {
			nj = qj.Name
		}
		return ni < nj
	})
	var sb strings.Builder
	sb.WriteString("Objectives:")
	for _, id := range ids {
		q, ok := g.data.Quests[id]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s", q.Name))
		sb.WriteString(g.objectiveLines(q, p.Quests[id]))
	}
	return sb.String()
}

// objectiveLines renders per-objective progress. Hidden objectives stay
// unlisted until they have progress.
func (g *Game) objectiveLines(q *quest.Quest, prog *quest.Progress) string {
	var sb strings.Builder
	for i, obj := range q.Objectives {
		have := 0
		if i < len(prog.Objectives) {
			have = prog.Objectives[i]
		}
		if obj.Hidden && have == 0 {
			continue
		}
		label := obj.Description
		if label == "" {
			label = fmt.Sprintf("%s %s", obj.Type, obj.Target)
		}
		mark := " "
		if have >= obj.Required {
			mark = "x"
		}
		opt := ""
		if obj.Optional {
			opt = " (optional)"
		}
		sb.WriteString(fmt.Sprintf("\n  [%s] %s: %d/%d%s", mark, label, have, obj.Required, opt))
	}
	return sb.String()
}

package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embermud/ember/pkg/quest"
)

func TestQuestByInput(t *testing.T) {
	g := newTestGame(t, &seqRoller{})

	assert.Equal(t, "spider_cull", g.QuestByInput("spider_cull").ID)
	assert.Equal(t, "spider_cull", g.QuestByInput("Spider Cull").ID)
	assert.Equal(t, "spider_cull", g.QuestByInput("spider").ID, "name prefix resolves")
	assert.Nil(t, g.QuestByInput("dragon_slaying"))
	assert.Nil(t, g.QuestByInput(""))
}

func TestAcceptQuest(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")

	ok, msg := g.AcceptQuest(p, "spider_cull")
	require.True(t, ok)
	assert.Contains(t, msg, "Quest accepted: Spider Cull")

	prog := p.QuestProgress("spider_cull")
	require.NotNil(t, prog)
	assert.Equal(t, quest.StatusActive, prog.Status)

	ok, msg = g.AcceptQuest(p, "spider_cull")
	assert.False(t, ok)
	assert.Contains(t, msg, "already on 'Spider Cull'")
}

func TestAcceptQuest_RequiresGiverPresent(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "forest")

	ok, msg := g.AcceptQuest(p, "spider_cull")
	assert.False(t, ok)
	assert.Contains(t, msg, "Nobody here offers")
	assert.Nil(t, p.QuestProgress("spider_cull"))
}

func TestCanPlayerStart_FailFastOrder(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	q := g.data.Quests["veteran_only"]

	check := func(wantReason string) {
		t.Helper()
		ok, reason := g.CanPlayerStart(p, q)
		assert.False(t, ok)
		assert.Equal(t, wantReason, reason)
	}

	check(ReasonInsufficientLevel)

	p.Level = 5
	check(ReasonMissingPrerequisite)

	p.Quests["spider_cull"] = &quest.Progress{QuestID: "spider_cull", Status: quest.StatusTurnedIn}
	check(ReasonMissingItem)

	require.True(t, g.giveItem(p, "spider_silk", 1))
	check(ReasonInsufficientReputation)

	p.Reputation["emberton"] = 10
	check(ReasonMissingStoryFlag)

	p.StoryFlags["met_the_mayor"] = true
	ok, reason := g.CanPlayerStart(p, q)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestKillProgressAndAutoComplete(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	_, _ = g.AcceptQuest(p, "spider_cull")
	takeEvents(g)

	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveKill, Target: "giant_spider", Quantity: 1})
	msgs := messagesFor(takeEvents(g), p.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "[Spider Cull] Spiders slain: 1/2", msgs[0])
	assert.Equal(t, quest.StatusActive, p.QuestProgress("spider_cull").Status)

	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveKill, Target: "giant_spider", Quantity: 1})
	msgs = messagesFor(takeEvents(g), p.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "[Spider Cull] Spiders slain: 2/2", msgs[0])
	assert.Contains(t, msgs[1], "Quest 'Spider Cull' is complete!")
	assert.Contains(t, msgs[1], "Return to Marta to turn it in.")
	assert.Equal(t, quest.StatusCompleted, p.QuestProgress("spider_cull").Status)
}

func TestUpdateQuestProgress_IgnoresMismatches(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	_, _ = g.AcceptQuest(p, "spider_cull")
	takeEvents(g)

	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveKill, Target: "forest_wolf", Quantity: 1})
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveCollect, Target: "giant_spider", Quantity: 1})
	assert.Empty(t, messagesFor(takeEvents(g), p.ID))
	assert.Zero(t, p.QuestProgress("spider_cull").Objectives[0])
}

func TestTurnInQuest(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	_, _ = g.AcceptQuest(p, "gather_herbs")

	ok, msg := g.TurnInQuest(p, "gather_herbs")
	assert.False(t, ok)
	assert.Contains(t, msg, "not finished yet")

	require.True(t, g.giveItem(p, "herb", 2))
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveExplore, Target: "forest", Quantity: 1})
	require.Equal(t, quest.StatusCompleted, p.QuestProgress("gather_herbs").Status)

	xpBefore := p.Experience
	ok, msg = g.TurnInQuest(p, "gather_herbs")
	require.True(t, ok)
	assert.Contains(t, msg, "Quest complete: Gather Herbs")
	assert.Contains(t, msg, "You gain 30 experience.")

	assert.Equal(t, xpBefore+30, p.Experience)
	assert.Zero(t, p.CountItem("herb"), "collected objective items are handed over")
	prog := p.QuestProgress("gather_herbs")
	assert.Equal(t, quest.StatusTurnedIn, prog.Status)
	assert.Equal(t, 1, prog.Completions)

	ok, msg = g.TurnInQuest(p, "gather_herbs")
	assert.False(t, ok)
	assert.Contains(t, msg, "already turned in")
}

func TestTurnInQuest_RequiresTurnInNPC(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	_, _ = g.AcceptQuest(p, "gather_herbs")
	require.True(t, g.giveItem(p, "herb", 2))
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveExplore, Target: "forest", Quantity: 1})

	require.NoError(t, g.world.MovePlayer(p, "forest"))
	ok, msg := g.TurnInQuest(p, "gather_herbs")
	assert.False(t, ok)
	assert.Contains(t, msg, "You must bring 'Gather Herbs' to Marta.")
	assert.Equal(t, 2, p.CountItem("herb"), "nothing handed over on refusal")
}

func TestRepeatableQuestCooldown(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()

	_, _ = g.AcceptQuest(p, "gather_herbs")
	require.True(t, g.giveItem(p, "herb", 2))
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveExplore, Target: "forest", Quantity: 1})
	ok, _ := g.TurnInQuest(p, "gather_herbs")
	require.True(t, ok)

	ok, msg := g.AcceptQuest(p, "gather_herbs")
	assert.False(t, ok)
	assert.Contains(t, msg, "too soon")

	setClock(g, base.Add(301*time.Second))
	ok, _ = g.AcceptQuest(p, "gather_herbs")
	require.True(t, ok)
	prog := p.QuestProgress("gather_herbs")
	assert.Equal(t, quest.StatusActive, prog.Status)
	assert.Equal(t, 1, prog.Completions, "completion count survives a re-accept")
	assert.Zero(t, prog.Objectives[0], "objective counters start fresh")
}

func TestAbandonQuest(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")

	ok, msg := g.AbandonQuest(p, "spider_cull")
	assert.False(t, ok)
	assert.Contains(t, msg, "not on")

	_, _ = g.AcceptQuest(p, "spider_cull")
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveKill, Target: "giant_spider", Quantity: 1})

	ok, msg = g.AbandonQuest(p, "spider_cull")
	require.True(t, ok)
	assert.Contains(t, msg, "You abandon 'Spider Cull'.")
	assert.Nil(t, p.QuestProgress("spider_cull"), "progress is discarded")
}

func TestTalkToNPC(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	b := joinTestPlayer(t, g, "Bob", "town_square")
	takeEvents(g)

	ok, msg := g.TalkToNPC(p, "marta")
	require.True(t, ok)
	assert.Contains(t, msg, `Marta says, "Spiders again."`)
	assert.Contains(t, msg, "(accept spider_cull)", "startable quests are offered")

	msgs := messagesFor(takeEvents(g), b.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Ada talks with Marta.", msgs[0])

	ok, msg = g.TalkToNPC(p, "nobody")
	assert.False(t, ok)
	assert.Contains(t, msg, "no nobody here")
}

func TestTalkToNPC_MentionsReadyTurnIn(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	_, _ = g.AcceptQuest(p, "gather_herbs")
	require.True(t, g.giveItem(p, "herb", 2))
	g.updateQuestProgress(p, questEvent{Type: quest.ObjectiveExplore, Target: "forest", Quantity: 1})

	ok, msg := g.TalkToNPC(p, "marta")
	require.True(t, ok)
	assert.Contains(t, msg, "(turnin gather_herbs)")
}

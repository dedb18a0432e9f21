package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeByInput(t *testing.T) {
	g := newTestGame(t, &seqRoller{})

	assert.Equal(t, "health_potion", g.RecipeByInput("health_potion").ID)
	assert.Equal(t, "health_potion", g.RecipeByInput("Health Potion").ID)
	assert.Equal(t, "health_potion", g.RecipeByInput("health").ID)
	assert.Nil(t, g.RecipeByInput("philosopher_stone"))
	assert.Nil(t, g.RecipeByInput(""))
}

func TestStartCraft_RejectsWithoutDeducting(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")

	ok, msg := g.StartCraft(p, "philosopher_stone")
	assert.False(t, ok)
	assert.Contains(t, msg, "don't know how to make")

	g.data.Recipes["health_potion"].SkillLevel = 3
	ok, msg = g.StartCraft(p, "health_potion")
	assert.False(t, ok)
	assert.Contains(t, msg, "requires alchemy level 3 (you are 1)")
	g.data.Recipes["health_potion"].SkillLevel = 1

	ok, msg = g.StartCraft(p, "health_potion")
	assert.False(t, ok)
	assert.Contains(t, msg, "You need 2× herb.")

	require.True(t, g.giveItem(p, "herb", 2))
	require.True(t, g.giveItem(p, "water_flask", 1))
	ok, msg = g.StartCraft(p, "health_potion")
	assert.False(t, ok)
	assert.Contains(t, msg, "You need a kettle to make that.")

	// Nothing was consumed across all refusals.
	assert.Equal(t, 2, p.CountItem("herb"))
	assert.Equal(t, 1, p.CountItem("water_flask"))
	assert.False(t, p.IsCrafting)
	assert.Zero(t, g.sched.Len())
}

func TestStartCraft_SchedulesCompletion(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()
	require.True(t, g.giveItem(p, "herb", 2))
	require.True(t, g.giveItem(p, "water_flask", 1))
	require.True(t, g.giveItem(p, "kettle", 1))

	ok, msg := g.StartCraft(p, "health_potion")
	require.True(t, ok)
	assert.Contains(t, msg, "You begin crafting health potion. (10 seconds)")

	assert.True(t, p.IsCrafting)
	assert.Equal(t, "health_potion", p.CraftingRecipe)
	assert.Equal(t, base.Add(10*time.Second), p.CraftingEnds)
	assert.Equal(t, 1, g.sched.Len())
	assert.Equal(t, 2, p.CountItem("herb"), "materials are consumed at completion, not at start")

	ok, msg = g.StartCraft(p, "sure_thing")
	assert.False(t, ok)
	assert.Contains(t, msg, "already crafting")
}

func TestCompleteCraft_Success(t *testing.T) {
	// ints: success roll 0 (< effective 87), quality offset 10 (+0).
	roller := &seqRoller{ints: []int{0, 10}}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()
	require.True(t, g.giveItem(p, "herb", 2))
	require.True(t, g.giveItem(p, "water_flask", 1))
	require.True(t, g.giveItem(p, "kettle", 1))

	ok, _ := g.StartCraft(p, "health_potion")
	require.True(t, ok)
	takeEvents(g)

	g.Tick(base.Add(10 * time.Second))

	assert.False(t, p.IsCrafting)
	assert.Zero(t, p.CountItem("herb"))
	assert.Zero(t, p.CountItem("water_flask"))
	assert.Equal(t, 1, p.CountItem("kettle"), "tools are not consumed")
	assert.Equal(t, 1, p.CountItem("health_potion"))

	// quality = 50 + floor(1*1.5) + 0 = 51
	potion := p.FindInventory("health potion")
	require.NotNil(t, potion)
	assert.Equal(t, 51, potion.Quality)

	// xp = (10 + 1*5) * 1.0 = 15
	assert.Equal(t, 15, p.Skill("alchemy").Experience)
}

func TestCompleteCraft_GuaranteedRecipeAlwaysSucceeds(t *testing.T) {
	// A 100% base rate skips the roll; only the quality offset is consumed.
	roller := &seqRoller{ints: []int{10}}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()
	require.True(t, g.giveItem(p, "herb", 1))

	ok, _ := g.StartCraft(p, "sure_thing")
	require.True(t, ok)
	g.Tick(base.Add(5 * time.Second))

	assert.Equal(t, 1, p.CountItem("health_potion"))
	assert.Zero(t, p.CountItem("herb"))
}

func TestCompleteCraft_ZeroEffectiveRateAlwaysFails(t *testing.T) {
	g := newTestGame(t, &seqRoller{floats: []float64{0.9}})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()
	g.data.Recipes["doomed"].Materials[0].Quantity = 4
	require.True(t, g.giveItem(p, "herb", 4))

	ok, _ := g.StartCraft(p, "doomed")
	require.True(t, ok)
	takeEvents(g)
	g.Tick(base.Add(5 * time.Second))

	assert.Zero(t, p.CountItem("health_potion"))
	// Failure ruins floor(4 * 0.9 * 0.5) = 1 herb.
	assert.Equal(t, 3, p.CountItem("herb"))
	// Consolation xp: floor(15 * 1.0 * 0.2) = 3.
	assert.Equal(t, 3, p.Skill("cursework").Experience)
}

func TestCompleteCraft_DisconnectCancels(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()
	require.True(t, g.giveItem(p, "herb", 1))

	ok, _ := g.StartCraft(p, "sure_thing")
	require.True(t, ok)

	left := g.LeavePlayer(p.ID)
	require.NotNil(t, left)
	assert.False(t, left.IsCrafting, "the interrupted craft is voided before the final save")
	assert.Equal(t, 1, left.CountItem("herb"), "no materials are consumed")

	// The orphaned completion task fires into nothing.
	g.Tick(base.Add(5 * time.Second))
	assert.Zero(t, g.sched.Len())
}

func TestCompleteCraft_StaleTaskIgnoresNewerAttempt(t *testing.T) {
	roller := &seqRoller{ints: []int{10}}
	g := newTestGame(t, roller)
	p := joinTestPlayer(t, g, "Ada", "town_square")
	base := g.clock()
	require.True(t, g.giveItem(p, "herb", 1))

	ok, _ := g.StartCraft(p, "sure_thing")
	require.True(t, ok)

	left := g.LeavePlayer(p.ID)
	require.NotNil(t, left)
	require.NoError(t, g.JoinPlayer(left))

	// Same recipe again, two seconds later. The first attempt's task is
	// still queued and must not finish this one early.
	setClock(g, base.Add(2*time.Second))
	ok, _ = g.StartCraft(left, "sure_thing")
	require.True(t, ok)
	takeEvents(g)

	g.Tick(base.Add(5 * time.Second))
	assert.True(t, left.IsCrafting, "still mid-craft after the stale task fires")
	assert.Zero(t, left.CountItem("health_potion"))

	g.Tick(base.Add(7 * time.Second))
	assert.False(t, left.IsCrafting)
	assert.Equal(t, 1, left.CountItem("health_potion"))
}

func TestCraftStatus(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")

	assert.Equal(t, "You are not crafting anything.", g.CraftStatus(p))

	require.True(t, g.giveItem(p, "herb", 1))
	ok, _ := g.StartCraft(p, "sure_thing")
	require.True(t, ok)
	assert.Contains(t, g.CraftStatus(p), "You are crafting sure thing")
}

func TestCraftListAndShow(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	p := joinTestPlayer(t, g, "Ada", "town_square")

	list := g.CraftList(p)
	assert.Contains(t, list, "health potion")
	assert.Contains(t, list, "sure thing")

	ok, show := g.CraftShow(p, "health_potion")
	require.True(t, ok)
	assert.Contains(t, show, "alchemy 1")
	assert.Contains(t, show, "2× herb (have 0)")
	assert.Contains(t, show, "kettle (missing)")
	assert.Contains(t, show, "Produces: 1× health potion")

	ok, msg := g.CraftShow(p, "philosopher_stone")
	assert.False(t, ok)
	assert.Contains(t, msg, "No recipe called")
}

package craft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillProgress_AddExperience(t *testing.T) {
	sp := &SkillProgress{Level: 1}

	assert.Equal(t, 100, sp.ExperienceToNext())
	assert.Equal(t, 0, sp.AddExperience(99))
	assert.Equal(t, 99, sp.Experience)

	// 1 more crosses level 1's threshold; nothing carried over.
	assert.Equal(t, 1, sp.AddExperience(1))
	assert.Equal(t, 2, sp.Level)
	assert.Equal(t, 0, sp.Experience)
	assert.Equal(t, 200, sp.ExperienceToNext())
}

func TestSkillProgress_MultiLevel(t *testing.T) {
	sp := &SkillProgress{Level: 1}
	// 100 + 200 + 50 spans two thresholds.
	assert.Equal(t, 2, sp.AddExperience(350))
	assert.Equal(t, 3, sp.Level)
	assert.Equal(t, 50, sp.Experience)
}

func TestSkillProgress_ZeroLevelRepaired(t *testing.T) {
	sp := &SkillProgress{}
	sp.AddExperience(10)
	assert.Equal(t, 1, sp.Level)
}

func TestRecipe_BaseExperience(t *testing.T) {
	assert.Equal(t, 15, (&Recipe{SkillLevel: 1}).BaseExperience())
	assert.Equal(t, 35, (&Recipe{SkillLevel: 5}).BaseExperience())
}

package craft

// Material is one consumed ingredient of a recipe.
type Material struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Recipe is a static crafting catalog entry. Materials are consumed on
// completion; tools are only checked for presence.
type Recipe struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Skill       string     `json:"skill"`
	SkillLevel  int        `json:"skill_level"`
	Materials   []Material `json:"materials"`
	Tools       []string   `json:"tools,omitempty"`
	Time        int        `json:"time"`         // seconds until completion
	SuccessRate int        `json:"success_rate"` // base percentage
	Result      Material   `json:"result"`
}

// SkillDef describes how a crafting skill progresses. The bonuses are
// applied per skill level when resolving a craft.
type SkillDef struct {
	Name                 string  `json:"name"`
	SuccessRatePerLevel  float64 `json:"success_rate_per_level"`
	QualityPerLevel      float64 `json:"quality_per_level"`
	ExperienceMultiplier float64 `json:"experience_multiplier"`
}

// DefaultSkillDef is used for skills with no catalog entry.
var DefaultSkillDef = SkillDef{
	SuccessRatePerLevel:  1.0,
	QualityPerLevel:      1.0,
	ExperienceMultiplier: 1.0,
}

// SkillProgress is a player's state in one crafting skill.
type SkillProgress struct {
	Level      int `json:"level"`
	Experience int `json:"experience"`
}

// ExperienceToNext returns the experience required to advance past the
// current skill level.
func (s *SkillProgress) ExperienceToNext() int {
	if s.Level < 1 {
		s.Level = 1
	}
	return s.Level * 100
}

// AddExperience grants skill experience and returns the number of levels
// gained. Multiple level-ups from a single award are honored.
func (s *SkillProgress) AddExperience(xp int) int {
	if xp <= 0 {
		return 0
	}
	if s.Level < 1 {
		s.Level = 1
	}
	s.Experience += xp
	levels := 0
	for s.Experience >= s.ExperienceToNext() {
		s.Experience -= s.ExperienceToNext()
		s.Level++
		levels++
	}
	return levels
}

// BaseExperience returns the skill experience a recipe is worth before the
// per-skill multiplier is applied.
func (r *Recipe) BaseExperience() int {
	return 10 + r.SkillLevel*5
}

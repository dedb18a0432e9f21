package quest

import "time"

// ObjectiveType identifies the game event a quest objective tracks.
type ObjectiveType string

const (
	ObjectiveKill    ObjectiveType = "kill"
	ObjectiveCollect ObjectiveType = "collect"
	ObjectiveExplore ObjectiveType = "explore"
	ObjectiveDeliver ObjectiveType = "deliver"
	ObjectiveTalkTo  ObjectiveType = "talk_to"
)

// Objective is one measurable sub-goal of a quest. Hidden objectives are
// not shown to the player until they make progress, but they still count
// toward completion unless also optional.
type Objective struct {
	Type        ObjectiveType `json:"type"`
	Target      string        `json:"target"`
	Description string        `json:"description,omitempty"`
	Required    int           `json:"required"`
	Optional    bool          `json:"optional,omitempty"`
	Hidden      bool          `json:"hidden,omitempty"`
}

// RequiredItem is an item the player must hold to start a quest.
type RequiredItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Prerequisites gate quest availability. All listed conditions must hold.
type Prerequisites struct {
	Level      int            `json:"level,omitempty"`
	Quests     []string       `json:"quests,omitempty"` // quest ids that must be turned in
	Items      []RequiredItem `json:"items,omitempty"`
	Reputation map[string]int `json:"reputation,omitempty"` // faction → minimum
	StoryFlags []string       `json:"story_flags,omitempty"`
}

// ItemGrant is an item reward.
type ItemGrant struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Rewards are granted once, at turn-in.
type Rewards struct {
	Experience int            `json:"experience,omitempty"`
	Gold       int            `json:"gold,omitempty"`
	Items      []ItemGrant    `json:"items,omitempty"`
	Reputation map[string]int `json:"reputation,omitempty"`
	Titles     []string       `json:"titles,omitempty"`
}

// Quest is a static template shared by all players. Per-player state lives
// in Progress.
type Quest struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	GiverNPC      string        `json:"giver_npc,omitempty"`
	TurnInNPC     string        `json:"turn_in_npc,omitempty"`
	Prerequisites Prerequisites `json:"prerequisites,omitempty"`
	Objectives    []Objective   `json:"objectives"`
	Rewards       Rewards       `json:"rewards,omitempty"`
	Repeatable    bool          `json:"repeatable,omitempty"`
	Cooldown      int           `json:"cooldown,omitempty"` // seconds before a repeat
}

// Status is the per-player quest lifecycle. Transitions only move forward;
// turned_in is terminal unless the quest is repeatable, in which case the
// progress resets to not_started after the cooldown.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusTurnedIn   Status = "turned_in"
)

// Progress tracks one player's state in one quest. Objective counters are
// index-aligned with the template's objective list.
type Progress struct {
	QuestID     string    `json:"quest_id"`
	Status      Status    `json:"status"`
	Objectives  []int     `json:"objectives"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	TurnedInAt  time.Time `json:"turned_in_at,omitempty"`
	Completions int       `json:"completions,omitempty"`
}

// NewProgress returns an active progress record for the given template.
func NewProgress(q *Quest, now time.Time) *Progress {
	return &Progress{
		QuestID:    q.ID,
		Status:     StatusActive,
		Objectives: make([]int, len(q.Objectives)),
		StartedAt:  now,
	}
}

// ObjectiveComplete reports whether objective i has reached its required count.
func (p *Progress) ObjectiveComplete(q *Quest, i int) bool {
	if i < 0 || i >= len(q.Objectives) || i >= len(p.Objectives) {
		return false
	}
	return p.Objectives[i] >= q.Objectives[i].Required
}

// AllRequiredComplete reports whether every non-optional objective is done.
// Hidden objectives count as required unless they are also optional.
func (p *Progress) AllRequiredComplete(q *Quest) bool {
	for i, obj := range q.Objectives {
		if obj.Optional {
			continue
		}
		if !p.ObjectiveComplete(q, i) {
			return false
		}
	}
	return true
}

// Advance increments objective i by qty, clamped at the required count.
// It returns the amount actually applied; advancing a completed objective
// is a no-op.
func (p *Progress) Advance(q *Quest, i, qty int) int {
	if i < 0 || i >= len(q.Objectives) || qty <= 0 {
		return 0
	}
	for len(p.Objectives) < len(q.Objectives) {
		p.Objectives = append(p.Objectives, 0)
	}
	required := q.Objectives[i].Required
	if p.Objectives[i] >= required {
		return 0
	}
	applied := qty
	if p.Objectives[i]+applied > required {
		applied = required - p.Objectives[i]
	}
	p.Objectives[i] += applied
	return applied
}

// CooldownOver reports whether a repeatable quest may be started again.
func (p *Progress) CooldownOver(q *Quest, now time.Time) bool {
	if p.Status != StatusTurnedIn {
		return false
	}
	if !q.Repeatable {
		return false
	}
	if q.Cooldown <= 0 {
		return true
	}
	return now.Sub(p.TurnedInAt) >= time.Duration(q.Cooldown)*time.Second
}

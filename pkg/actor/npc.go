package actor

import "github.com/embermud/ember/pkg/textfilter"

// NPC is a friendly or neutral character anchored to a room. NPCs hand out
// and accept quests and respond to the talk command.
type NPC struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Disposition string   `json:"disposition,omitempty"` // e.g. "friendly", "neutral"
	Dialogue    []string `json:"dialogue,omitempty"`
	Quests      []string `json:"quests,omitempty"` // quest ids this NPC gives and accepts
	Room        string   `json:"room,omitempty"`
}

// Matches reports whether player input refers to this NPC, by id or by a
// case-insensitive prefix of the name or any word in it.
func (n *NPC) Matches(input string) bool {
	return textfilter.MatchesName(input, n.ID, n.Name)
}

// GivesQuest reports whether the NPC offers the given quest id.
func (n *NPC) GivesQuest(questID string) bool {
	for _, id := range n.Quests {
		if id == questID {
			return true
		}
	}
	return false
}

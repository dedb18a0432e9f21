package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/embermud/ember/internal/storage"
	"github.com/embermud/ember/pkg/quest"
	"github.com/embermud/ember/pkg/world"
)

func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	validator := &WorldValidator{}
	if err := validator.validateDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World data is valid!")
}

// WorldValidator checks a data directory for broken cross-references.
// Dangling exits are legal at runtime (the passage just stays shut), so
// they are reported as warnings rather than errors.
type WorldValidator struct {
	errors   []string
	warnings []string
}

func (v *WorldValidator) validateDir(dataDir string) error {
	fmt.Printf("Validating %s...\n", dataDir)

	wd, err := storage.LoadWorldData(dataDir)
	if err != nil {
		return err
	}

	v.errors = nil
	v.warnings = nil

	rooms := make(map[string]*world.Room, len(wd.Rooms))
	for _, r := range wd.Rooms {
		v.validateIDFormat("room ID", r.ID)
		if _, dup := rooms[r.ID]; dup {
			v.addError(fmt.Sprintf("duplicate room ID '%s'", r.ID))
		}
		rooms[r.ID] = r
	}

	if wd.RespawnRoom == "" {
		v.addError("world.json has no respawn_room")
	} else if _, ok := rooms[wd.RespawnRoom]; !ok {
		v.addError(fmt.Sprintf("respawn_room '%s' is not a defined room", wd.RespawnRoom))
	}

	for _, r := range wd.Rooms {
		for dir, dest := range r.Exits {
			if _, ok := world.CanonicalDirection(dir); !ok {
				v.addError(fmt.Sprintf("room '%s' exit '%s' is not a direction", r.ID, dir))
			}
			if _, ok := rooms[dest]; !ok {
				v.addWarning(fmt.Sprintf("room '%s' exit %s leads to undefined room '%s'", r.ID, dir, dest))
			}
		}
	}

	for id := range wd.Items {
		v.validateIDFormat("item ID", id)
	}

	for id, m := range wd.Monsters {
		v.validateIDFormat("monster ID", id)
		for _, entry := range m.Loot {
			v.requireItem(fmt.Sprintf("monster '%s' loot", id), entry.ItemID, wd)
			if entry.Chance < 0 || entry.Chance > 1 {
				v.addError(fmt.Sprintf("monster '%s' loot '%s' chance %v outside [0,1]", id, entry.ItemID, entry.Chance))
			}
		}
	}

	npcs := make(map[string]bool, len(wd.NPCs))
	for _, n := range wd.NPCs {
		v.validateIDFormat("NPC ID", n.ID)
		npcs[n.ID] = true
		if _, ok := rooms[n.Room]; !ok {
			v.addError(fmt.Sprintf("NPC '%s' placed in undefined room '%s'", n.ID, n.Room))
		}
		for _, questID := range n.Quests {
			if _, ok := wd.Quests[questID]; !ok {
				v.addError(fmt.Sprintf("NPC '%s' references undefined quest '%s'", n.ID, questID))
			}
		}
	}

	for id, q := range wd.Quests {
		v.validateIDFormat("quest ID", id)
		v.validateQuest(q, rooms, npcs, wd)
	}

	for id, r := range wd.Recipes {
		v.validateIDFormat("recipe ID", id)
		for _, mat := range r.Materials {
			v.requireItem(fmt.Sprintf("recipe '%s' material", id), mat.ItemID, wd)
		}
		for _, tool := range r.Tools {
			v.requireItem(fmt.Sprintf("recipe '%s' tool", id), tool, wd)
		}
		v.requireItem(fmt.Sprintf("recipe '%s' result", id), r.Result.ItemID, wd)
		if r.Skill == "" {
			v.addError(fmt.Sprintf("recipe '%s' has no skill", id))
		}
	}

	for _, sp := range wd.Spawns {
		if _, ok := rooms[sp.RoomID]; !ok {
			v.addError(fmt.Sprintf("spawn places '%s' in undefined room '%s'", sp.MonsterID, sp.RoomID))
		}
		if sp.MonsterID != "" {
			if _, ok := wd.Monsters[sp.MonsterID]; !ok {
				v.addError(fmt.Sprintf("spawn references undefined monster '%s'", sp.MonsterID))
			}
		}
		if sp.GroundItem != "" {
			v.requireItem("spawn ground item", sp.GroundItem, wd)
		}
	}

	for _, w := range v.warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dataDir, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *WorldValidator) validateQuest(q *quest.Quest, rooms map[string]*world.Room, npcs map[string]bool, wd *storage.WorldData) {
	if q.GiverNPC != "" && !npcs[q.GiverNPC] {
		v.addError(fmt.Sprintf("quest '%s' giver NPC '%s' undefined", q.ID, q.GiverNPC))
	}
	if q.TurnInNPC != "" && !npcs[q.TurnInNPC] {
		v.addError(fmt.Sprintf("quest '%s' turn-in NPC '%s' undefined", q.ID, q.TurnInNPC))
	}
	if len(q.Objectives) == 0 {
		v.addError(fmt.Sprintf("quest '%s' has no objectives", q.ID))
	}
	for i, obj := range q.Objectives {
		if obj.Required <= 0 {
			v.addError(fmt.Sprintf("quest '%s' objective %d required count %d", q.ID, i, obj.Required))
		}
		switch obj.Type {
		case quest.ObjectiveKill:
			if _, ok := wd.Monsters[obj.Target]; !ok {
				v.addError(fmt.Sprintf("quest '%s' kill objective targets undefined monster '%s'", q.ID, obj.Target))
			}
		case quest.ObjectiveCollect:
			v.requireItem(fmt.Sprintf("quest '%s' collect objective", q.ID), obj.Target, wd)
		case quest.ObjectiveExplore:
			if _, ok := rooms[obj.Target]; !ok {
				v.addError(fmt.Sprintf("quest '%s' explore objective targets undefined room '%s'", q.ID, obj.Target))
			}
		case quest.ObjectiveTalkTo, quest.ObjectiveDeliver:
			if !npcs[obj.Target] {
				v.addError(fmt.Sprintf("quest '%s' %s objective targets undefined NPC '%s'", q.ID, obj.Type, obj.Target))
			}
		default:
			v.addError(fmt.Sprintf("quest '%s' objective %d has unknown type '%s'", q.ID, i, obj.Type))
		}
	}
	for _, id := range q.Prerequisites.Quests {
		if _, ok := wd.Quests[id]; !ok {
			v.addError(fmt.Sprintf("quest '%s' requires undefined quest '%s'", q.ID, id))
		}
	}
	for _, req := range q.Prerequisites.Items {
		v.requireItem(fmt.Sprintf("quest '%s' prerequisite", q.ID), req.ItemID, wd)
	}
	for _, grant := range q.Rewards.Items {
		v.requireItem(fmt.Sprintf("quest '%s' reward", q.ID), grant.ItemID, wd)
	}
}

func (v *WorldValidator) requireItem(context, itemID string, wd *storage.WorldData) {
	if itemID == "" {
		v.addError(fmt.Sprintf("%s has empty item id", context))
		return
	}
	if _, ok := wd.Items[itemID]; !ok {
		v.addError(fmt.Sprintf("%s references undefined item '%s'", context, itemID))
	}
}

func (v *WorldValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		v.addError(fmt.Sprintf("%s is empty", fieldName))
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *WorldValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

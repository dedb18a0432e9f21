package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/embermud/ember/pkg/actor"
	"github.com/embermud/ember/pkg/craft"
	"github.com/embermud/ember/pkg/item"
	"github.com/embermud/ember/pkg/quest"
	"github.com/embermud/ember/pkg/world"
)

// WorldData is the full static content catalog loaded once at startup.
// Rooms, item and monster templates, NPCs, quests, recipes and skill
// definitions are all read-only after load.
type WorldData struct {
	RespawnRoom string                    `json:"respawn_room"`
	Rooms       []*world.Room             `json:"rooms"`
	Items       map[string]*item.Item     `json:"items"`
	Monsters    map[string]*actor.Monster `json:"monsters"`
	NPCs        []*actor.NPC              `json:"npcs"`
	Quests      map[string]*quest.Quest   `json:"quests"`
	Recipes     map[string]*craft.Recipe  `json:"recipes"`
	Skills      map[string]craft.SkillDef `json:"skills"`

	// Spawns bind monster templates to rooms at world load.
	Spawns []Spawn `json:"spawns"`
}

// Spawn places count instances of a monster template in a room.
type Spawn struct {
	RoomID     string `json:"room_id"`
	MonsterID  string `json:"monster_id"`
	Count      int    `json:"count"`
	GroundItem string `json:"ground_item,omitempty"`
}

// LoadWorldData reads the content catalog from a data directory. Each file
// is optional except rooms.json; missing optional files load as empty
// catalogs.
func LoadWorldData(dataDir string) (*WorldData, error) {
	wd := &WorldData{
		Items:    make(map[string]*item.Item),
		Monsters: make(map[string]*actor.Monster),
		Quests:   make(map[string]*quest.Quest),
		Recipes:  make(map[string]*craft.Recipe),
		Skills:   make(map[string]craft.SkillDef),
	}

	var manifest struct {
		RespawnRoom string  `json:"respawn_room"`
		Spawns      []Spawn `json:"spawns"`
	}
	if err := loadJSON(dataDir, "world.json", &manifest); err != nil {
		return nil, fmt.Errorf("world.json: %w", err)
	}
	wd.RespawnRoom = manifest.RespawnRoom
	wd.Spawns = manifest.Spawns

	if err := loadJSON(dataDir, "rooms.json", &wd.Rooms); err != nil {
		return nil, fmt.Errorf("rooms.json: %w", err)
	}
	if len(wd.Rooms) == 0 {
		return nil, fmt.Errorf("rooms.json: no rooms defined")
	}

	optional := []struct {
		file string
		dst  any
	}{
		{"items.json", &wd.Items},
		{"monsters.json", &wd.Monsters},
		{"npcs.json", &wd.NPCs},
		{"quests.json", &wd.Quests},
		{"recipes.json", &wd.Recipes},
		{"skills.json", &wd.Skills},
	}
	for _, f := range optional {
		if err := loadJSON(dataDir, f.file, f.dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}

	normalizeIDs(wd)
	return wd, nil
}

// normalizeIDs back-fills map keys into the id fields of catalog entries so
// data files may omit the redundant id.
func normalizeIDs(wd *WorldData) {
	for id, it := range wd.Items {
		if it.ID == "" {
			it.ID = id
		}
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
	}
	for id, m := range wd.Monsters {
		if m.ID == "" {
			m.ID = id
		}
		if m.TemplateID == "" {
			m.TemplateID = id
		}
	}
	for id, q := range wd.Quests {
		if q.ID == "" {
			q.ID = id
		}
	}
	for id, r := range wd.Recipes {
		if r.ID == "" {
			r.ID = id
		}
	}
	for name, def := range wd.Skills {
		if def.Name == "" {
			def.Name = name
			wd.Skills[name] = def
		}
	}
}

// SkillDef returns the definition for a skill name, falling back to the
// default progression.
func (wd *WorldData) SkillDef(name string) craft.SkillDef {
	if def, ok := wd.Skills[name]; ok {
		return def
	}
	return craft.DefaultSkillDef
}

func loadJSON(dataDir, file string, dst any) error {
	path := filepath.Join(dataDir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}

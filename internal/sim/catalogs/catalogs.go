package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaJSON string

// DefaultSustenance is the variant used by races that declare none.
const DefaultSustenance = "hunger"

type Catalogs struct {
	Races       map[string]RaceDef
	Professions map[string]ProfessionDef
	Sustenance  map[string]SustenanceDef
	Digest      string
}

type RaceDef struct {
	ID         string `yaml:"id" json:"id"`
	Sustenance string `yaml:"sustenance,omitempty" json:"sustenance,omitempty"`
	// NodeSkip lets travellers move to a neighbor-of-a-neighbor in one step.
	NodeSkip          bool    `yaml:"node_skip,omitempty" json:"node_skip,omitempty"`
	EncounterModifier float64 `yaml:"encounter_modifier,omitempty" json:"encounter_modifier,omitempty"`
}

type ProfessionDef struct {
	ID         string `yaml:"id" json:"id"`
	DoubleMove bool   `yaml:"double_move,omitempty" json:"double_move,omitempty"`
}

type SustenanceMode string

const (
	ModeHunger  SustenanceMode = "HUNGER"
	ModeCounter SustenanceMode = "COUNTER"
)

// SustenanceDef parametrizes the daily sustenance state machine.
// An item is consumable when its category or template id is listed.
type SustenanceDef struct {
	ID         string         `yaml:"id" json:"id"`
	Mode       SustenanceMode `yaml:"mode" json:"mode"`
	Categories []string       `yaml:"categories,omitempty" json:"categories,omitempty"`
	Templates  []string       `yaml:"templates,omitempty" json:"templates,omitempty"`
	Cap        int            `yaml:"cap,omitempty" json:"cap,omitempty"`
}

func (d SustenanceDef) Accepts(category, templateID string) bool {
	for _, c := range d.Categories {
		if c == category {
			return true
		}
	}
	for _, t := range d.Templates {
		if t == templateID {
			return true
		}
	}
	return false
}

type file struct {
	Races       []RaceDef       `yaml:"races"`
	Professions []ProfessionDef `yaml:"professions"`
	Sustenance  []SustenanceDef `yaml:"sustenance"`
}

func Load(path string) (*Catalogs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Parse(raw []byte) (*Catalogs, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	c := &Catalogs{
		Races:       map[string]RaceDef{},
		Professions: map[string]ProfessionDef{},
		Sustenance:  map[string]SustenanceDef{},
		Digest:      sha256Hex(raw),
	}
	for _, s := range f.Sustenance {
		if _, dup := c.Sustenance[s.ID]; dup {
			return nil, fmt.Errorf("duplicate sustenance id %q", s.ID)
		}
		c.Sustenance[s.ID] = s
	}
	if _, ok := c.Sustenance[DefaultSustenance]; !ok {
		return nil, fmt.Errorf("missing %q sustenance variant", DefaultSustenance)
	}
	for _, r := range f.Races {
		if _, dup := c.Races[r.ID]; dup {
			return nil, fmt.Errorf("duplicate race id %q", r.ID)
		}
		if r.Sustenance != "" {
			if _, ok := c.Sustenance[r.Sustenance]; !ok {
				return nil, fmt.Errorf("race %s: unknown sustenance %q", r.ID, r.Sustenance)
			}
		}
		c.Races[r.ID] = r
	}
	for _, p := range f.Professions {
		if _, dup := c.Professions[p.ID]; dup {
			return nil, fmt.Errorf("duplicate profession id %q", p.ID)
		}
		c.Professions[p.ID] = p
	}
	return c, nil
}

// validate checks the raw YAML document against the embedded JSON schema.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees plain JSON values.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog is not JSON-compatible: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	schema, err := jsonschema.CompileString("catalog.schema.json", catalogSchemaJSON)
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	return schema.Validate(v)
}

// SustenanceFor returns the variant a race lives by, falling back to plain hunger.
func (c *Catalogs) SustenanceFor(race string) SustenanceDef {
	if r, ok := c.Races[race]; ok && r.Sustenance != "" {
		if d, ok := c.Sustenance[r.Sustenance]; ok {
			return d
		}
	}
	return c.Sustenance[DefaultSustenance]
}

func (c *Catalogs) CanSkipNode(race string) bool {
	return c.Races[race].NodeSkip
}

func (c *Catalogs) EncounterModifier(race string) float64 {
	return c.Races[race].EncounterModifier
}

// MovesPerTick is 2 when any active profession grants a double move.
func (c *Catalogs) MovesPerTick(activeProfessions []string) int {
	for _, p := range activeProfessions {
		if c.Professions[p].DoubleMove {
			return 2
		}
	}
	return 1
}

// RaceIDs returns race ids in stable order.
func (c *Catalogs) RaceIDs() []string {
	ids := make([]string, 0, len(c.Races))
	for id := range c.Races {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

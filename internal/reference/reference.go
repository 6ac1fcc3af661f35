// Package reference holds the immutable lake baselines, species traits and
// presence observations that scoring runs against.
package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
	"gopkg.in/yaml.v3"
)

//go:embed data/reference.yaml
var defaultReference []byte

// document is the on-disk YAML layout.
type document struct {
	Lakes    []schema.LakeBaseline   `yaml:"lakes"`
	Species  []schema.SpeciesRecord  `yaml:"species"`
	Presence []schema.PresenceRecord `yaml:"presence"`
}

type presenceKey struct {
	species string
	lake    string
}

// Store is a read-only, in-memory reference table. It is safe for concurrent use.
type Store struct {
	lakes        []schema.LakeBaseline
	lakeIndex    map[string]int
	aliasIndex   map[string]string
	species      map[string]schema.SpeciesRecord
	speciesNames []string
	presence     map[presenceKey]schema.Presence
	recordCounts map[string]int
	totalRecords int
}

var _ contract.ReferenceStore = &Store{}

// Default returns the store built from the embedded reference data.
func Default() (*Store, error) {
	return Parse(defaultReference)
}

// LoadFile reads a YAML reference file from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load reads YAML reference data from r.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML reference data and builds a store.
func Parse(data []byte) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode reference data: %w", err)
	}
	return New(doc.Lakes, doc.Species, doc.Presence)
}

// New validates the given tables and builds a store from them.
// Lake insertion order is preserved.
func New(lakes []schema.LakeBaseline, species []schema.SpeciesRecord, presence []schema.PresenceRecord) (*Store, error) {
	if len(lakes) == 0 {
		return nil, errors.New("reference data must contain at least one lake")
	}

	s := &Store{
		lakes:        make([]schema.LakeBaseline, 0, len(lakes)),
		lakeIndex:    make(map[string]int, len(lakes)),
		aliasIndex:   make(map[string]string),
		species:      make(map[string]schema.SpeciesRecord, len(species)),
		speciesNames: make([]string, 0, len(species)),
		presence:     make(map[presenceKey]schema.Presence),
		recordCounts: make(map[string]int),
	}

	for _, lake := range lakes {
		if err := validateLake(lake); err != nil {
			return nil, err
		}
		if _, dup := s.lakeIndex[lake.Name]; dup {
			return nil, fmt.Errorf("duplicate lake %q", lake.Name)
		}
		s.lakeIndex[lake.Name] = len(s.lakes)
		s.lakes = append(s.lakes, lake)
	}

	for _, lake := range s.lakes {
		for _, alias := range lake.Aliases {
			alias = schema.NormalizeName(alias)
			if alias == "" {
				continue
			}
			if _, clash := s.lakeIndex[alias]; clash && alias != lake.Name {
				return nil, fmt.Errorf("alias %q of %q collides with a lake name", alias, lake.Name)
			}
			if prev, ok := s.aliasIndex[alias]; ok && prev != lake.Name {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", alias, prev, lake.Name)
			}
			s.aliasIndex[alias] = lake.Name
		}
	}

	for _, sp := range species {
		if sp.Species == "" {
			return nil, errors.New("species record without a species name")
		}
		if _, dup := s.species[sp.Species]; dup {
			return nil, fmt.Errorf("duplicate species %q", sp.Species)
		}
		s.species[sp.Species] = sp
		s.speciesNames = append(s.speciesNames, sp.Species)
	}
	sort.Strings(s.speciesNames)

	for _, rec := range presence {
		s.totalRecords++
		s.recordCounts[rec.Species]++
		lake, ok := s.resolveWaterbody(rec.WaterbodyName)
		if !ok {
			continue
		}
		key := presenceKey{species: rec.Species, lake: lake}
		// Any positive observation outranks an explicit absence.
		if s.presence[key] == schema.PresenceYes {
			continue
		}
		s.presence[key] = schema.PresenceFromBool(rec.IsPresent())
	}

	return s, nil
}

func validateLake(lake schema.LakeBaseline) error {
	if strings.TrimSpace(lake.Name) == "" {
		return errors.New("lake without a name")
	}
	if err := lake.Env.Validate(); err != nil {
		return fmt.Errorf("lake %q: %w", lake.Name, err)
	}
	if math.IsNaN(lake.Latitude) || lake.Latitude < -90 || lake.Latitude > 90 {
		return fmt.Errorf("lake %q: latitude must be between -90 and 90 (received %v)", lake.Name, lake.Latitude)
	}
	if math.IsNaN(lake.Longitude) || lake.Longitude < -180 || lake.Longitude > 180 {
		return fmt.Errorf("lake %q: longitude must be between -180 and 180 (received %v)", lake.Name, lake.Longitude)
	}
	return nil
}

// resolveWaterbody maps an observational waterbody name to a canonical lake name.
// It tries the exact name, then the alias table, then a case-insensitive containment match.
func (s *Store) resolveWaterbody(name string) (string, bool) {
	if lake, ok := s.ResolveLake(name); ok {
		return lake, true
	}
	lower := strings.ToLower(schema.NormalizeName(name))
	if lower == "" {
		return "", false
	}
	for _, lake := range s.lakes {
		if strings.Contains(lower, strings.ToLower(lake.Name)) {
			return lake.Name, true
		}
	}
	return "", false
}

// ResolveLake returns the canonical lake name for an exact name or a known alias.
func (s *Store) ResolveLake(name string) (string, bool) {
	if _, ok := s.lakeIndex[name]; ok {
		return name, true
	}
	normalized := schema.NormalizeName(name)
	if _, ok := s.lakeIndex[normalized]; ok {
		return normalized, true
	}
	if lake, ok := s.aliasIndex[normalized]; ok {
		return lake, true
	}
	return "", false
}

// Lakes returns a copy of every lake baseline in insertion order.
func (s *Store) Lakes() []schema.LakeBaseline {
	out := make([]schema.LakeBaseline, len(s.lakes))
	copy(out, s.lakes)
	return out
}

// Lake looks up a lake by canonical name or alias.
func (s *Store) Lake(name string) (schema.LakeBaseline, bool) {
	canonical, ok := s.ResolveLake(name)
	if !ok {
		return schema.LakeBaseline{}, false
	}
	return s.lakes[s.lakeIndex[canonical]], true
}

// Species looks up a species by exact scientific name.
func (s *Store) Species(name string) (schema.SpeciesRecord, bool) {
	sp, ok := s.species[name]
	return sp, ok
}

// SpeciesNames returns all species names in sorted order.
func (s *Store) SpeciesNames() []string {
	out := make([]string, len(s.speciesNames))
	copy(out, s.speciesNames)
	return out
}

// PresenceOf reports whether a species has been observed in a lake.
// Lakes without any matching record are Unknown.
func (s *Store) PresenceOf(species, lake string) schema.Presence {
	canonical, ok := s.ResolveLake(lake)
	if !ok {
		return schema.PresenceUnknown
	}
	if p, ok := s.presence[presenceKey{species: species, lake: canonical}]; ok {
		return p
	}
	return schema.PresenceUnknown
}

// RecordsCount returns the number of presence records for a species.
func (s *Store) RecordsCount(species string) int {
	return s.recordCounts[species]
}

// TotalRecords returns the number of presence records across all species.
func (s *Store) TotalRecords() int {
	return s.totalRecords
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/form"
)

// SeedFile is the YAML document applied by `checkerctl seed`. It describes
// the taxonomy and input form an empty deployment starts with:
//
//	categories:
//	  - item_type: character
//	    name: Element
//	    role: element
//	    required: true
//	    values: [fire, water, earth, wind, light, dark]
//	input_groups:
//	  - name: Profile
//	    items:
//	      - {label: Rank, type: number, required: true}
type SeedFile struct {
	Categories  []SeedCategory   `yaml:"categories"`
	InputGroups []SeedInputGroup `yaml:"input_groups"`
}

type SeedCategory struct {
	ItemType    string   `yaml:"item_type"`
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	Required    bool     `yaml:"required"`
	MultiSelect bool     `yaml:"multi_select"`
	SortOrder   int      `yaml:"sort_order"`
	Values      []string `yaml:"values"`
}

type SeedInputGroup struct {
	Name      string          `yaml:"name"`
	SortOrder int             `yaml:"sort_order"`
	Items     []SeedInputItem `yaml:"items"`
}

type SeedInputItem struct {
	Label     string   `yaml:"label"`
	Type      string   `yaml:"type"`
	Required  bool     `yaml:"required"`
	Default   string   `yaml:"default"`
	Options   []string `yaml:"options"`
	SortOrder int      `yaml:"sort_order"`
}

// ParseSeed decodes a seed document. Unknown keys are rejected so a typo
// does not silently drop a setting.
func ParseSeed(r io.Reader) (SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return SeedFile{}, fmt.Errorf("%w: seed file is empty", domain.ErrValidation)
		}
		return SeedFile{}, fmt.Errorf("%w: seed file: %w", domain.ErrValidation, err)
	}
	return f, nil
}

// SeedReport counts what Apply created and what already existed.
type SeedReport struct {
	CategoriesCreated int
	ValuesCreated     int
	GroupsCreated     int
	FieldsCreated     int
	Existing          int
}

// Seeder applies a SeedFile through the regular services so every row it
// writes passes the same validation as the admin API.
type Seeder struct {
	taxonomy *TaxonomyService
	inputs   *InputService
}

func NewSeeder(taxonomy *TaxonomyService, inputs *InputService) *Seeder {
	return &Seeder{taxonomy: taxonomy, inputs: inputs}
}

// Apply creates whatever in f is missing. Categories match on item type and
// name, values on their text, groups on name and fields on label, so
// running the same file twice is a no-op. Existing rows are never updated.
func (s *Seeder) Apply(ctx context.Context, f SeedFile) (SeedReport, error) {
	var rep SeedReport
	for i, sc := range f.Categories {
		if err := s.applyCategory(ctx, sc, &rep); err != nil {
			return rep, fmt.Errorf("service.Seeder.Apply: categories[%d]: %w", i, err)
		}
	}
	if len(f.InputGroups) == 0 {
		return rep, nil
	}

	groups, err := s.inputs.Schema(ctx)
	if err != nil {
		return rep, fmt.Errorf("service.Seeder.Apply: %w", err)
	}
	for i, sg := range f.InputGroups {
		if err := s.applyGroup(ctx, groups, sg, &rep); err != nil {
			return rep, fmt.Errorf("service.Seeder.Apply: input_groups[%d]: %w", i, err)
		}
	}
	return rep, nil
}

func (s *Seeder) applyCategory(ctx context.Context, sc SeedCategory, rep *SeedReport) error {
	t, ok := domain.ParseItemType(sc.ItemType)
	if !ok {
		return fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, sc.ItemType)
	}
	name := strings.TrimSpace(sc.Name)

	existing, err := s.taxonomy.ListCategories(ctx, t)
	if err != nil {
		return err
	}
	var cat domain.TagCategory
	found := false
	for _, c := range existing {
		if c.Name == name {
			cat, found = c, true
			break
		}
	}
	if found {
		rep.Existing++
	} else {
		cat, err = s.taxonomy.CreateCategory(ctx, domain.TagCategory{
			Name:        name,
			Role:        sc.Role,
			ItemType:    t,
			Required:    sc.Required,
			MultiSelect: sc.MultiSelect,
			SortOrder:   sc.SortOrder,
		})
		if err != nil {
			return err
		}
		rep.CategoriesCreated++
	}

	for i, v := range sc.Values {
		_, err := s.taxonomy.CreateValue(ctx, domain.TagValue{
			CategoryID: cat.ID,
			Value:      v,
			SortOrder:  i,
		})
		switch {
		case errors.Is(err, domain.ErrConflict):
			rep.Existing++
		case err != nil:
			return fmt.Errorf("value %q: %w", v, err)
		default:
			rep.ValuesCreated++
		}
	}
	return nil
}

func (s *Seeder) applyGroup(ctx context.Context, groups []domain.InputGroup, sg SeedInputGroup, rep *SeedReport) error {
	name := strings.TrimSpace(sg.Name)

	var group domain.InputGroup
	found := false
	for _, g := range groups {
		if g.Name == name {
			group, found = g, true
			break
		}
	}
	if found {
		rep.Existing++
	} else {
		created, err := s.inputs.CreateGroup(ctx, domain.InputGroup{Name: name, SortOrder: sg.SortOrder})
		if err != nil {
			return err
		}
		group = created
		rep.GroupsCreated++
	}

	have := make(map[string]bool, len(group.Items))
	for _, it := range group.Items {
		have[it.Label] = true
	}
	for _, si := range sg.Items {
		label := strings.TrimSpace(si.Label)
		if have[label] {
			rep.Existing++
			continue
		}
		ft, _ := form.ParseType(si.Type)
		_, err := s.inputs.CreateItem(ctx, domain.InputItem{
			GroupID:      group.ID,
			Label:        label,
			Type:         ft,
			Required:     si.Required,
			DefaultValue: si.Default,
			Options:      si.Options,
			SortOrder:    si.SortOrder,
		})
		if err != nil {
			return fmt.Errorf("field %q: %w", label, err)
		}
		have[label] = true
		rep.FieldsCreated++
	}
	return nil
}

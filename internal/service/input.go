package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/form"
	"github.com/pkordes/granblue-checker/internal/repo"
)

// InputService manages the user-info form schema.
type InputService struct {
	inputs repo.InputRepo
}

// NewInputService constructs an InputService backed by the provided InputRepo.
func NewInputService(inputs repo.InputRepo) *InputService {
	return &InputService{inputs: inputs}
}

// Schema returns every group with its items, in display order.
func (s *InputService) Schema(ctx context.Context) ([]domain.InputGroup, error) {
	groups, err := s.inputs.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.InputService.Schema: %w", err)
	}
	if groups == nil {
		return []domain.InputGroup{}, nil
	}
	return groups, nil
}

// Defaults returns the parsed default value of every field that has one.
func Defaults(groups []domain.InputGroup) domain.FieldValues {
	out := domain.FieldValues{}
	for _, g := range groups {
		for _, it := range g.Items {
			if it.DefaultValue == "" {
				continue
			}
			codec, err := form.CodecFor(it.Type)
			if err != nil {
				continue
			}
			if v, err := codec.Parse(it.DefaultValue, it.Options); err == nil {
				out[it.ID.String()] = v
			}
		}
	}
	return out
}

func (s *InputService) GetGroup(ctx context.Context, id uuid.UUID) (domain.InputGroup, error) {
	g, err := s.inputs.GetGroup(ctx, id)
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("service.InputService.GetGroup: %w", err)
	}
	return g, nil
}

func (s *InputService) CreateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return domain.InputGroup{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	created, err := s.inputs.CreateGroup(ctx, g)
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("service.InputService.CreateGroup: %w", err)
	}
	return created, nil
}

func (s *InputService) UpdateGroup(ctx context.Context, g domain.InputGroup) (domain.InputGroup, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return domain.InputGroup{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	updated, err := s.inputs.UpdateGroup(ctx, g)
	if err != nil {
		return domain.InputGroup{}, fmt.Errorf("service.InputService.UpdateGroup: %w", err)
	}
	return updated, nil
}

// DeleteGroup removes a group and every item in it.
func (s *InputService) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if err := s.inputs.DeleteGroup(ctx, id); err != nil {
		return fmt.Errorf("service.InputService.DeleteGroup: %w", err)
	}
	return nil
}

// CreateItem validates and adds a field to an existing group.
// Returns domain.ErrNotFound if the group does not exist.
func (s *InputService) CreateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	if _, err := s.inputs.GetGroup(ctx, it.GroupID); err != nil {
		return domain.InputItem{}, fmt.Errorf("service.InputService.CreateItem: %w", err)
	}
	it, err := normalizeInputItem(it)
	if err != nil {
		return domain.InputItem{}, err
	}
	created, err := s.inputs.CreateItem(ctx, it)
	if err != nil {
		return domain.InputItem{}, fmt.Errorf("service.InputService.CreateItem: %w", err)
	}
	return created, nil
}

// UpdateItem validates and overwrites a field. Fields cannot move between
// groups.
func (s *InputService) UpdateItem(ctx context.Context, it domain.InputItem) (domain.InputItem, error) {
	it, err := normalizeInputItem(it)
	if err != nil {
		return domain.InputItem{}, err
	}
	updated, err := s.inputs.UpdateItem(ctx, it)
	if err != nil {
		return domain.InputItem{}, fmt.Errorf("service.InputService.UpdateItem: %w", err)
	}
	return updated, nil
}

func (s *InputService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.inputs.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("service.InputService.DeleteItem: %w", err)
	}
	return nil
}

// normalizeInputItem trims text fields and enforces:
//   - Label is non-empty.
//   - Type is one of the field variants.
//   - radio and select carry at least one distinct, non-empty option;
//     other variants carry none.
//   - DefaultValue, when set, parses under the variant's codec.
func normalizeInputItem(it domain.InputItem) (domain.InputItem, error) {
	it.Label = strings.TrimSpace(it.Label)
	if it.Label == "" {
		return it, fmt.Errorf("%w: label is required", domain.ErrValidation)
	}
	codec, err := form.CodecFor(it.Type)
	if err != nil {
		return it, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if it.Type.HasOptions() {
		opts := make([]string, 0, len(it.Options))
		for _, o := range it.Options {
			o = strings.TrimSpace(o)
			if o != "" && !slices.Contains(opts, o) {
				opts = append(opts, o)
			}
		}
		if len(opts) == 0 {
			return it, fmt.Errorf("%w: %s fields need at least one option", domain.ErrValidation, it.Type)
		}
		it.Options = opts
	} else {
		it.Options = []string{}
	}

	it.DefaultValue = strings.TrimSpace(it.DefaultValue)
	if _, err := codec.Parse(it.DefaultValue, it.Options); err != nil {
		return it, fmt.Errorf("%w: default value: %w", domain.ErrValidation, err)
	}
	return it, nil
}

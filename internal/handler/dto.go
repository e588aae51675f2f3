package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/granblue-checker/internal/catalog"
	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/service"
)

// ---- items -------------------------------------------------------------------

type itemResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Type          domain.ItemType     `json:"type"`
	ImageURL      *string             `json:"image_url,omitempty"`
	BlurHash      *string             `json:"blur_hash,omitempty"`
	ImplementedAt openapi_types.Date  `json:"implemented_at"`
	TagValueIDs   []uuid.UUID         `json:"tag_value_ids"`
	Tags          map[string][]string `json:"tags,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type createItemRequest struct {
	ID            string             `json:"id,omitempty" validate:"omitempty,max=100"`
	Name          string             `json:"name" validate:"required,max=200"`
	Type          string             `json:"type" validate:"required,oneof=character weapon summon"`
	ImplementedAt openapi_types.Date `json:"implemented_at"`
	TagValueIDs   []uuid.UUID        `json:"tag_value_ids"`
}

type updateItemRequest struct {
	Name          string             `json:"name" validate:"required,max=200"`
	ImplementedAt openapi_types.Date `json:"implemented_at"`
	TagValueIDs   []uuid.UUID        `json:"tag_value_ids"`
}

type itemPageResponse struct {
	Items []itemResponse `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
}

type catalogSearchRequest struct {
	Search      string              `json:"search" validate:"max=200"`
	OwnedOnly   bool                `json:"owned_only"`
	SelectedIDs []string            `json:"selected_ids"`
	TagFilters  map[string][]string `json:"tag_filters"`
}

type filterOptionResponse struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	MultiSelect bool     `json:"multi_select"`
	Values      []string `json:"values"`
}

type catalogResponse struct {
	Items   []itemResponse         `json:"items"`
	Filters []filterOptionResponse `json:"filters"`
}

func itemToResponse(it domain.Item) itemResponse {
	resp := itemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Type:          it.Type,
		BlurHash:      it.BlurHash,
		ImplementedAt: openapi_types.Date{Time: it.ImplementedAt},
		TagValueIDs:   it.ValueIDs(),
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
	}
	if it.ImageRef != nil {
		u := "/images/" + *it.ImageRef
		resp.ImageURL = &u
	}
	return resp
}

func itemsToResponse(items []domain.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = itemToResponse(it)
	}
	return out
}

func valueIDsToTags(ids []uuid.UUID) []domain.ItemTag {
	tags := make([]domain.ItemTag, len(ids))
	for i, id := range ids {
		tags[i] = domain.ItemTag{ValueID: id}
	}
	return tags
}

func catalogToResponse(page service.CatalogPage) catalogResponse {
	resp := catalogResponse{
		Items:   make([]itemResponse, len(page.Items)),
		Filters: make([]filterOptionResponse, len(page.Filters)),
	}
	for i, e := range page.Items {
		resp.Items[i] = itemToResponse(e.Item)
		resp.Items[i].Tags = e.Tags
	}
	for i, f := range page.Filters {
		resp.Filters[i] = filterOptionToResponse(f)
	}
	return resp
}

func filterOptionToResponse(f catalog.FilterOption) filterOptionResponse {
	vals := f.Values
	if vals == nil {
		vals = []string{}
	}
	return filterOptionResponse{Key: f.Key, Label: f.Label, MultiSelect: f.MultiSelect, Values: vals}
}

// ---- taxonomy ----------------------------------------------------------------

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Role        string `json:"role" validate:"max=100"`
	ItemType    string `json:"item_type" validate:"omitempty,oneof=character weapon summon"`
	MultiSelect bool   `json:"multi_select"`
	Required    bool   `json:"required"`
	SortOrder   int    `json:"sort_order"`
}

type categoryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Role        string          `json:"role,omitempty"`
	FilterKey   string          `json:"filter_key"`
	ItemType    domain.ItemType `json:"item_type"`
	MultiSelect bool            `json:"multi_select"`
	Required    bool            `json:"required"`
	SortOrder   int             `json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`

	Values []valueResponse `json:"values,omitempty"`
}

type valueRequest struct {
	Value     string `json:"value" validate:"required,max=100"`
	SortOrder int    `json:"sort_order"`
}

type valueResponse struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Value      string    `json:"value"`
	SortOrder  int       `json:"sort_order"`
}

type taxonomyResponse struct {
	ItemType   domain.ItemType    `json:"item_type"`
	Categories []categoryResponse `json:"categories"`
}

func categoryToResponse(c domain.TagCategory) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Role:        c.Role,
		FilterKey:   catalog.FilterKey(c),
		ItemType:    c.ItemType,
		MultiSelect: c.MultiSelect,
		Required:    c.Required,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
	}
}

func valueToResponse(v domain.TagValue) valueResponse {
	return valueResponse{ID: v.ID, CategoryID: v.CategoryID, Value: v.Value, SortOrder: v.SortOrder}
}

func valuesToResponse(vals []domain.TagValue) []valueResponse {
	out := make([]valueResponse, len(vals))
	for i, v := range vals {
		out[i] = valueToResponse(v)
	}
	return out
}

// taxonomyToResponse nests each category's values under it, keeping the
// taxonomy's display order for both.
func taxonomyToResponse(t catalog.Taxonomy) taxonomyResponse {
	byCategory := make(map[uuid.UUID][]valueResponse)
	for _, v := range t.Values {
		byCategory[v.CategoryID] = append(byCategory[v.CategoryID], valueToResponse(v))
	}
	resp := taxonomyResponse{ItemType: t.ItemType, Categories: make([]categoryResponse, len(t.Categories))}
	for i, c := range t.Categories {
		resp.Categories[i] = categoryToResponse(c)
		resp.Categories[i].Values = byCategory[c.ID]
	}
	return resp
}

// ---- input schema ------------------------------------------------------------

type inputGroupRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	SortOrder int    `json:"sort_order"`
}

type inputItemRequest struct {
	Label        string   `json:"label" validate:"required,max=100"`
	Type         string   `json:"type" validate:"required,oneof=text number checkbox radio select date"`
	Required     bool     `json:"required"`
	DefaultValue string   `json:"default_value"`
	Options      []string `json:"options"`
	SortOrder    int      `json:"sort_order"`
}

type inputItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	GroupID      uuid.UUID        `json:"group_id"`
	Label        string           `json:"label"`
	Type         domain.FieldType `json:"type"`
	Required     bool             `json:"required"`
	DefaultValue string           `json:"default_value"`
	Options      []string         `json:"options"`
	SortOrder    int              `json:"sort_order"`
}

type inputGroupResponse struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	SortOrder int                 `json:"sort_order"`
	Items     []inputItemResponse `json:"items"`
}

type inputSchemaResponse struct {
	Groups   []inputGroupResponse `json:"groups"`
	Defaults domain.FieldValues   `json:"defaults"`
}

func inputItemToResponse(it domain.InputItem) inputItemResponse {
	opts := it.Options
	if opts == nil {
		opts = []string{}
	}
	return inputItemResponse{
		ID:           it.ID,
		GroupID:      it.GroupID,
		Label:        it.Label,
		Type:         it.Type,
		Required:     it.Required,
		DefaultValue: it.DefaultValue,
		Options:      opts,
		SortOrder:    it.SortOrder,
	}
}

func inputGroupToResponse(g domain.InputGroup) inputGroupResponse {
	resp := inputGroupResponse{ID: g.ID, Name: g.Name, SortOrder: g.SortOrder, Items: make([]inputItemResponse, len(g.Items))}
	for i, it := range g.Items {
		resp.Items[i] = inputItemToResponse(it)
	}
	return resp
}

func requestToInputItem(body inputItemRequest) domain.InputItem {
	return domain.InputItem{
		Label:        body.Label,
		Type:         domain.FieldType(body.Type),
		Required:     body.Required,
		DefaultValue: body.DefaultValue,
		Options:      body.Options,
		SortOrder:    body.SortOrder,
	}
}

// ---- selection state / sessions ----------------------------------------------

type selectionState struct {
	InputValues     domain.FieldValues `json:"input_values"`
	SelectedItemIDs []string           `json:"selected_item_ids"`
	WeaponCounts    map[string]int     `json:"weapon_counts"`
}

func (s selectionState) toDomain() domain.SelectionState {
	out := domain.SelectionState{
		Values:       s.InputValues,
		Selected:     s.SelectedItemIDs,
		WeaponCounts: s.WeaponCounts,
	}
	if out.Values == nil {
		out.Values = domain.FieldValues{}
	}
	if out.Selected == nil {
		out.Selected = []string{}
	}
	if out.WeaponCounts == nil {
		out.WeaponCounts = map[string]int{}
	}
	return out
}

// stateToResponse replaces nil collections with empty ones so clients
// always see {} and [] rather than null.
func stateToResponse(s domain.SelectionState) selectionState {
	d := selectionState{InputValues: s.Values, SelectedItemIDs: s.Selected, WeaponCounts: s.WeaponCounts}.toDomain()
	return selectionState{InputValues: d.Values, SelectedItemIDs: d.Selected, WeaponCounts: d.WeaponCounts}
}

type sessionResponse struct {
	ID              string             `json:"id"`
	ShareURL        string             `json:"share_url"`
	InputValues     domain.FieldValues `json:"input_values"`
	SelectedItemIDs []string           `json:"selected_item_ids"`
	WeaponCounts    map[string]int     `json:"weapon_counts"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ---- import / export ---------------------------------------------------------

type importRequest struct {
	Text  string         `json:"text"`
	State selectionState `json:"state"`
}

type importCounts struct {
	Characters int `json:"characters"`
	Weapons    int `json:"weapons"`
	Summons    int `json:"summons"`
	Values     int `json:"values"`
}

type importResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Versioned bool           `json:"versioned"`
	Warnings  []string       `json:"warnings"`
	Counts    importCounts   `json:"counts"`
	State     selectionState `json:"state"`
}

func importToResponse(o service.ImportOutcome) importResponse {
	res := o.Result
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return importResponse{
		Success:   res.Success,
		Message:   res.Message,
		Versioned: res.Versioned,
		Warnings:  warnings,
		Counts: importCounts{
			Characters: len(res.Characters),
			Weapons:    len(res.Weapons),
			Summons:    len(res.Summons),
			Values:     len(res.Values),
		},
		State: stateToResponse(o.State),
	}
}

// ---- bulk upload -------------------------------------------------------------

type bulkErrorResponse struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type bulkResponse struct {
	Total     int                 `json:"total"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	Errors    []bulkErrorResponse `json:"errors"`
	Created   []itemResponse      `json:"created"`
}

func bulkToResponse(res service.BulkResult) bulkResponse {
	resp := bulkResponse{
		Total:     res.Total,
		Processed: res.Processed,
		Failed:    res.Failed,
		Errors:    make([]bulkErrorResponse, len(res.Errors)),
		Created:   itemsToResponse(res.Created),
	}
	for i, e := range res.Errors {
		resp.Errors[i] = bulkErrorResponse{Row: e.Row, Name: e.Name, Reason: e.Reason}
	}
	return resp
}

// Package interchange implements the delimited-text formats the checker
// reads and writes: the versioned selection export and its import, the
// bulk-upload item sheet, and the blank templates offered for it.
package interchange

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/form"
)

const (
	// FormatMarker is the first line of every versioned export.
	FormatMarker = "#GRANBLUE_CHECKER_DATA_FORMAT_V1"

	exportedAtPrefix = "#EXPORTED_AT "
	sectionPrefix    = "#SECTION "
	sectionItems     = "ITEMS"
	sectionUserInfo  = "USER_INFO"

	bom = "\uFEFF"
)

var (
	itemsHeader    = []string{"type", "id", "name", "count"}
	userInfoHeader = []string{"groupId", "groupName", "itemId", "itemName", "itemType", "value"}
)

// ItemRow is one selected item in the ITEMS section.
// Count is only written for weapons; a weapon with no count is written as
// one copy.
type ItemRow struct {
	Type  domain.ItemType
	ID    string
	Name  string
	Count *int
}

// UserInfoRow is one field value in the USER_INFO section.
type UserInfoRow struct {
	GroupID   string
	GroupName string
	ItemID    string
	ItemName  string
	ItemType  domain.FieldType
	Value     string
}

// Document is everything one export file carries.
type Document struct {
	ExportedAt time.Time
	Items      []ItemRow
	UserInfo   []UserInfoRow
}

// EncodeCSV writes doc in the versioned export format: a UTF-8 BOM, the
// format marker, an export timestamp, a blank line, then the ITEMS and
// USER_INFO sections each with their header row.
func EncodeCSV(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	raw := func(s string) {
		cw.Flush()
		_, _ = bw.WriteString(s)
	}

	raw(bom + FormatMarker + "\n")
	raw(exportedAtPrefix + doc.ExportedAt.UTC().Format(time.RFC3339) + "\n")
	raw("\n")

	raw(sectionPrefix + sectionItems + "\n")
	_ = cw.Write(itemsHeader)
	for _, it := range doc.Items {
		count := ""
		if it.Type == domain.ItemTypeWeapon {
			n := 1
			if it.Count != nil {
				n = *it.Count
			}
			count = strconv.Itoa(n)
		}
		_ = cw.Write([]string{string(it.Type), it.ID, it.Name, count})
	}

	raw("\n")
	raw(sectionPrefix + sectionUserInfo + "\n")
	_ = cw.Write(userInfoHeader)
	for _, u := range doc.UserInfo {
		_ = cw.Write([]string{u.GroupID, u.GroupName, u.ItemID, u.ItemName, string(u.ItemType), u.Value})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("interchange.EncodeCSV: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("interchange.EncodeCSV: %w", err)
	}
	return nil
}

// ImportResult is the outcome of DecodeCSV. When Success is false only
// Message is meaningful and callers must leave their state untouched.
type ImportResult struct {
	Success   bool
	Message   string
	Versioned bool

	// ItemIDs holds every imported id once, in file order.
	ItemIDs      []string
	Characters   []string
	Weapons      []string
	Summons      []string
	WeaponCounts map[string]int
	Values       domain.FieldValues

	// Warnings lists rows that were imported with a guess or skipped,
	// e.g. an id with no type prefix that defaulted to character.
	Warnings []string
}

func failure(msg string) ImportResult {
	return ImportResult{Success: false, Message: msg}
}

// DecodeCSV parses an export produced by EncodeCSV, or a legacy export
// without the format marker. It never panics and never returns an error:
// unparseable input or input with no recognisable rows yields a result
// with Success=false.
func DecodeCSV(text string) ImportResult {
	text = strings.TrimPrefix(text, bom)
	if strings.TrimSpace(text) == "" {
		return failure("the file is empty")
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return failure("the file could not be read as CSV: " + err.Error())
	}

	res := ImportResult{
		WeaponCounts: make(map[string]int),
		Values:       make(domain.FieldValues),
	}
	seen := make(map[string]struct{})

	if len(records) > 0 && strings.TrimSpace(records[0][0]) == FormatMarker {
		res.Versioned = true
		decodeSections(records[1:], &res, seen)
	} else {
		decodeLegacy(records, &res, seen)
	}

	if len(res.ItemIDs) == 0 && len(res.Values) == 0 {
		return failure("no item or user-info rows were found")
	}
	res.Success = true
	res.Message = fmt.Sprintf("imported %d items and %d field values", len(res.ItemIDs), len(res.Values))
	return res
}

func decodeSections(records [][]string, res *ImportResult, seen map[string]struct{}) {
	section := ""
	for n, rec := range records {
		first := strings.TrimSpace(rec[0])
		if rest, ok := strings.CutPrefix(first, sectionPrefix); ok {
			section = strings.TrimSpace(rest)
			continue
		}
		if strings.HasPrefix(first, "#") || isBlank(rec) {
			continue
		}

		switch section {
		case sectionItems:
			if isHeader(rec, itemsHeader) || len(rec) < 2 {
				continue
			}
			count := ""
			if len(rec) > 3 {
				count = rec[3]
			}
			res.addItem(n+2, rec[0], rec[1], count, seen)
		case sectionUserInfo:
			if isHeader(rec, userInfoHeader) || len(rec) < 6 {
				continue
			}
			res.addValue(n+2, rec[2], rec[4], rec[5])
		}
	}
}

// decodeLegacy treats every row with at least three columns as an item
// row (type, id, name). Unversioned files carry no user info.
func decodeLegacy(records [][]string, res *ImportResult, seen map[string]struct{}) {
	for n, rec := range records {
		if len(rec) < 3 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rec[1]), "id") {
			continue
		}
		count := ""
		if len(rec) > 3 {
			count = rec[3]
		}
		res.addItem(n+1, rec[0], rec[1], count, seen)
	}
}

func (res *ImportResult) addItem(row int, typeCol, id, count string, seen map[string]struct{}) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	t, warning := classify(id, typeCol)
	if warning != "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", row, warning))
	}
	if t == domain.ItemTypeWeapon {
		if c := strings.TrimSpace(count); c != "" {
			n, err := strconv.Atoi(c)
			if err != nil || n < 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: ignoring count %q for %s", row, c, id))
			} else {
				res.WeaponCounts[id] = n
			}
		}
	}
	if _, dup := seen[id]; dup {
		return
	}
	seen[id] = struct{}{}
	res.ItemIDs = append(res.ItemIDs, id)
	switch t {
	case domain.ItemTypeWeapon:
		res.Weapons = append(res.Weapons, id)
	case domain.ItemTypeSummon:
		res.Summons = append(res.Summons, id)
	default:
		res.Characters = append(res.Characters, id)
	}
}

// classify decides the bucket for id. The literal id prefix wins; an
// unprefixed id falls back to a recognised type column, and failing that to
// character with a warning, since the intent of such rows is ambiguous.
func classify(id, typeCol string) (domain.ItemType, string) {
	if t, ok := domain.ItemTypeFromID(id); ok {
		return t, ""
	}
	if t, ok := domain.ParseItemType(typeCol); ok {
		return t, fmt.Sprintf("id %q has no type prefix; using type column %q", id, t)
	}
	return domain.ItemTypeCharacter, fmt.Sprintf("id %q has no type prefix; defaulting to character", id)
}

func (res *ImportResult) addValue(row int, itemID, itemType, raw string) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return
	}
	ft, ok := form.ParseType(itemType)
	if !ok {
		res.Values[itemID] = raw
		return
	}
	codec, _ := form.CodecFor(ft)
	v, err := codec.Parse(raw, nil)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %v; keeping text", row, err))
		res.Values[itemID] = raw
		return
	}
	res.Values[itemID] = v
}

// Merge applies a successful import to state and returns the new state:
// field values overwrite by key, item ids union into the selection, and
// weapon counts overwrite by id. A failed result returns state unchanged.
func Merge(state domain.SelectionState, res ImportResult) domain.SelectionState {
	if !res.Success {
		return state
	}
	out := state.Clone()
	for k, v := range res.Values {
		out.Values[k] = v
	}
	out.AddSelected(res.ItemIDs...)
	for id, n := range res.WeaponCounts {
		out.WeaponCounts[id] = n
	}
	return out
}

func isHeader(rec, header []string) bool {
	return len(rec) >= len(header) && strings.EqualFold(strings.TrimSpace(rec[0]), header[0]) &&
		strings.EqualFold(strings.TrimSpace(rec[1]), header[1])
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

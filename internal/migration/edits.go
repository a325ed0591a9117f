package migration

import "sort"

// EditType discriminates the three kinds of manual override. The kinds are
// mutually exclusive per file; only an assign carries a payload.
type EditType string

const (
	// EditIgnore excludes the file from migration entirely.
	EditIgnore EditType = "ignore"
	// EditAssign forces the file into a specific slot.
	EditAssign EditType = "assign"
	// EditUnassign clears the proposed slot and flags the file for review.
	EditUnassign EditType = "unassign"
)

// ManualEdit is a user decision that supersedes the automatic proposal for
// one file. Construct values with IgnoreEdit, AssignEdit or UnassignEdit so
// an assign always carries its slot and the other kinds never do.
type ManualEdit struct {
	Type     EditType `json:"type"`
	SlotID   *int64   `json:"slotId,omitempty"`
	SlotName string   `json:"slotName,omitempty"`
}

// IgnoreEdit returns an edit that excludes a file from migration.
func IgnoreEdit() ManualEdit {
	return ManualEdit{Type: EditIgnore}
}

// AssignEdit returns an edit that forces a file to the given slot.
func AssignEdit(slotID int64, slotName string) ManualEdit {
	return ManualEdit{Type: EditAssign, SlotID: &slotID, SlotName: slotName}
}

// UnassignEdit returns an edit that clears the proposed slot and marks the
// file as needing review.
func UnassignEdit() ManualEdit {
	return ManualEdit{Type: EditUnassign}
}

// EditSet maps file IDs to their active manual edit. At most one edit exists
// per file; setting a new edit for a file replaces the previous one.
type EditSet map[int64]ManualEdit

// Overrides converts the edit set to the server's override wire shape,
// ordered by file ID so execution requests are deterministic.
func (e EditSet) Overrides() []FileOverride {
	if len(e) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	overrides := make([]FileOverride, 0, len(ids))
	for _, id := range ids {
		edit := e[id]
		overrides = append(overrides, FileOverride{
			FileID: id,
			Type:   string(edit.Type),
			SlotID: edit.SlotID,
		})
	}
	return overrides
}

package watcher

import (
	"slices"
	"strings"
)

// Diff classifies the differences between two snapshots. The result holds at
// most one event per operation, in the order Created, Modified, Deleted,
// Renamed, and is empty when nothing changed.
//
// Modified only considers the attributes selected by mask. An entry whose
// kind changed at the same path is reported as Deleted plus Created.
//
// Rename detection is a heuristic. A deleted and a created entry of the same
// kind and size are paired when both carry the same FileID, or, when either
// lacks one, when their creation times are equal. A matching FileID also
// needs equal creation times when both entries carry a birth time, so a
// reused inode is not taken for a rename. It can still pair unrelated files
// that happen to match and misses renames combined with other changes.
// Without a birth time (Linux filesystems that lack it, where the change
// time stands in) Created moves on rename and chmod: the attribute fallback
// then never pairs a rename, and CreationTime reports a chmod as Modified.
// Files are paired only when mask has FileName, directories only when it
// has DirectoryName.
func Diff(prev, curr *Snapshot, mask NotifyFilters) []ChangeEvent {
	var created, deleted, modified, modifiedPrev []FileEntry

	for _, p := range curr.Paths() {
		c, _ := curr.Get(p)
		old, ok := prev.Get(p)
		switch {
		case !ok:
			created = append(created, c)
		case old.Kind != c.Kind:
			deleted = append(deleted, old)
			created = append(created, c)
		case mask.significant(old, c):
			modified = append(modified, c)
			modifiedPrev = append(modifiedPrev, old)
		}
	}
	for _, p := range prev.Paths() {
		if _, ok := curr.Get(p); !ok {
			old, _ := prev.Get(p)
			deleted = append(deleted, old)
		}
	}
	sortEntries(deleted)

	created, deleted, renamed, renamedPrev := pairRenames(created, deleted, mask)

	var events []ChangeEvent
	if len(created) > 0 {
		events = append(events, ChangeEvent{Op: Created, Files: created})
	}
	if len(modified) > 0 {
		events = append(events, ChangeEvent{Op: Modified, Files: modified, Previous: modifiedPrev})
	}
	if len(deleted) > 0 {
		events = append(events, ChangeEvent{Op: Deleted, Files: deleted})
	}
	if len(renamed) > 0 {
		events = append(events, ChangeEvent{Op: Renamed, Files: renamed, Previous: renamedPrev})
	}
	return events
}

// pairRenames walks deleted entries in path order and pairs each with the
// first unused created entry it matches. It returns the unpaired remainders
// and the renamed entries with their old counterparts.
func pairRenames(created, deleted []FileEntry, mask NotifyFilters) (
	restCreated, restDeleted, renamed, renamedPrev []FileEntry,
) {
	if len(created) == 0 || len(deleted) == 0 || !mask.Has(FileName) && !mask.Has(DirectoryName) {
		return created, deleted, nil, nil
	}

	used := make([]bool, len(created))
	for _, d := range deleted {
		match := -1
		if renameAllowed(d.Kind, mask) {
			for i, c := range created {
				if !used[i] && sameIdentity(d, c) {
					match = i
					break
				}
			}
		}
		if match < 0 {
			restDeleted = append(restDeleted, d)
			continue
		}
		used[match] = true
		renamed = append(renamed, created[match])
		renamedPrev = append(renamedPrev, d)
	}
	for i, c := range created {
		if !used[i] {
			restCreated = append(restCreated, c)
		}
	}
	return restCreated, restDeleted, renamed, renamedPrev
}

func renameAllowed(k Kind, mask NotifyFilters) bool {
	if k == KindDirectory {
		return mask.Has(DirectoryName)
	}
	return mask.Has(FileName)
}

func sameIdentity(a, b FileEntry) bool {
	if a.Kind != b.Kind || a.Size != b.Size {
		return false
	}
	if a.ID.Valid() && b.ID.Valid() {
		if a.ID != b.ID {
			return false
		}
		return !a.Born || !b.Born || a.Created.Equal(b.Created)
	}
	return a.Created.Equal(b.Created)
}

func sortEntries(entries []FileEntry) {
	slices.SortFunc(entries, func(a, b FileEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
}

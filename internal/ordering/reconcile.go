package ordering

import "slices"

// Reconcile returns items arranged by order. Ids in order that match no
// item are skipped, duplicates are placed once, and items not named in
// order follow in their original sequence.
func Reconcile[T any](order []string, items []T, id func(T) string) []T {
	index := make(map[string]int, len(items))
	for i, it := range items {
		if _, dup := index[id(it)]; !dup {
			index[id(it)] = i
		}
	}

	placed := make([]bool, len(items))
	out := make([]T, 0, len(items))
	for _, key := range order {
		i, ok := index[key]
		if !ok || placed[i] {
			continue
		}
		placed[i] = true
		out = append(out, items[i])
	}
	for i, it := range items {
		if !placed[i] {
			out = append(out, it)
		}
	}
	return out
}

// IDs maps items to their ids.
func IDs[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

// MoveID moves from into to's slot. The target index is taken before
// from is removed, so moving forward lands after the elements that shift
// back and moving backward lands before them. The input is not modified;
// unknown ids or from == to return a copy unchanged.
func MoveID(ids []string, from, to string) []string {
	out := slices.Clone(ids)
	if from == to {
		return out
	}
	fromIdx := slices.Index(ids, from)
	toIdx := slices.Index(ids, to)
	if fromIdx < 0 || toIdx < 0 {
		return out
	}
	out = slices.Delete(out, fromIdx, fromIdx+1)
	return slices.Insert(out, toIdx, from)
}

// Merge completes a staged order with ids from current it does not
// mention. An empty staged order yields current.
func Merge(staged, current []string) []string {
	if len(staged) == 0 {
		return slices.Clone(current)
	}
	seen := make(map[string]bool, len(staged))
	out := slices.Clone(staged)
	for _, id := range staged {
		seen[id] = true
	}
	for _, id := range current {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

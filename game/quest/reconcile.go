package quest

// Reconcile diffs a desired set against the stored one. Entries present in
// both are merged into the stored entity with apply and returned for saving
// along with brand-new ones; stored entries missing from desired are
// returned for deletion. Output order follows desired, then current.
func Reconcile[T any](desired, current []T, key func(T) string, apply func(dst, src T)) (toSave, toDelete []T) {
	existing := make(map[string]T, len(current))
	for _, c := range current {
		existing[key(c)] = c
	}
	wanted := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		k := key(d)
		wanted[k] = struct{}{}
		if c, ok := existing[k]; ok {
			apply(c, d)
			toSave = append(toSave, c)
			continue
		}
		toSave = append(toSave, d)
	}
	for _, c := range current {
		if _, ok := wanted[key(c)]; !ok {
			toDelete = append(toDelete, c)
		}
	}
	return toSave, toDelete
}

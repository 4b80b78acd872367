package colors

import "sort"

// Dedupe drops records whose ID was already seen, keeping the first one
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))

	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}

	return out
}

// Rank orders records by Interactions, highest first. It stable-sorts
// ascending and then reverses, so records with equal Interactions end up in
// reverse of their input order. The input slice is not modified.
func Rank(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interactions < out[j].Interactions
	})

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// Process dedupes and ranks a collection. The result is never nil.
func Process(records []Record) []Record {
	return Rank(Dedupe(records))
}

// Package storage writes the ranked color collection to disk.
//
// The Writer serializes records as a compact JSON array into a temporary
// file next to the destination and renames it into place, so a run either
// fully replaces the previous output or leaves it untouched. Parent
// directories are created on demand.
//
// Usage:
//
//	w := storage.NewWriter("dist/colors.json")
//	if err := w.Save(records); err != nil {
//	    return err
//	}
package storage

// Package colors turns timeline statuses into ranked color records.
package colors

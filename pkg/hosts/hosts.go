// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

// Package hosts turns host expressions and known_hosts patterns into an
// ordered, de-duplicated list of host names.
package hosts

// ExpandedHost is a candidate host name produced by expansion or matching.
type ExpandedHost struct {
	Name string
}

// IndexedHost is a de-duplicated host tagged with its position in the
// de-duplicated list. Index is assigned once by Dedup and never changes.
type IndexedHost struct {
	ExpandedHost
	Index int
}

// Names returns the names of list in order.
func Names(list []ExpandedHost) []string {
	names := make([]string, len(list))
	for i, h := range list {
		names[i] = h.Name
	}
	return names
}

// IndexedNames returns the names of list in order.
func IndexedNames(list []IndexedHost) []string {
	names := make([]string, len(list))
	for i, h := range list {
		names[i] = h.Name
	}
	return names
}

// FromNames wraps names as ExpandedHosts in order.
func FromNames(names []string) []ExpandedHost {
	list := make([]ExpandedHost, len(names))
	for i, n := range names {
		list[i] = ExpandedHost{Name: n}
	}
	return list
}

// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package hosts

// Dedup drops repeated names, keeping the first occurrence, and assigns each
// surviving host its position as Index.
func Dedup(list []ExpandedHost) []IndexedHost {
	seen := make(map[string]struct{}, len(list))
	out := make([]IndexedHost, 0, len(list))
	for _, h := range list {
		if _, ok := seen[h.Name]; ok {
			continue
		}
		seen[h.Name] = struct{}{}
		out = append(out, IndexedHost{ExpandedHost: h, Index: len(out)})
	}
	return out
}

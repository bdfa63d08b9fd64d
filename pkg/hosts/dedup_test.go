// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package hosts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupFirstOccurrenceWins(t *testing.T) {
	got := Dedup(FromNames([]string{"b", "a", "b"}))
	require.Equal(t, []IndexedHost{
		{ExpandedHost: ExpandedHost{Name: "b"}, Index: 0},
		{ExpandedHost: ExpandedHost{Name: "a"}, Index: 1},
	}, got)
}

func TestDedupIsCaseSensitive(t *testing.T) {
	got := Dedup(FromNames([]string{"Web", "web", "WEB", "web"}))
	require.Equal(t, []string{"Web", "web", "WEB"}, IndexedNames(got))
}

func TestDedupIsIdempotent(t *testing.T) {
	list, err := ExpandAll([]string{"h[1:4]", "h{2,5,1}", "h[3:6]"})
	require.NoError(t, err)

	once := Dedup(list)
	require.Equal(t, []string{"h1", "h2", "h3", "h4", "h5", "h6"}, IndexedNames(once))

	twice := Dedup(FromNames(IndexedNames(once)))
	require.Equal(t, once, twice)
}

func TestDedupIndexesAreDense(t *testing.T) {
	got := Dedup(FromNames([]string{"x", "x", "y", "z", "y", "w"}))
	for i, h := range got {
		require.Equal(t, i, h.Index)
	}
}

func TestDedupEmpty(t *testing.T) {
	require.Empty(t, Dedup(nil))
}

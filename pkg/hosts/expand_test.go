// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package hosts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want []string
	}{
		{"plain name", "web01.example.com", []string{"web01.example.com"}},
		{"empty", "", []string{""}},
		{"range", "h[1:3]", []string{"h1", "h2", "h3"}},
		{"single value range", "h[7:7]", []string{"h7"}},
		{"range without padding", "db[9:11]", []string{"db9", "db10", "db11"}},
		{"negative range", "n[-1:1]", []string{"n-1", "n0", "n1"}},
		{"list", "h{a,b}", []string{"ha", "hb"}},
		{"list with empty item", "h{a,}", []string{"ha", "h"}},
		{"range outer list inner", "h[1:2]-{x,y}", []string{"h1-x", "h1-y", "h2-x", "h2-y"}},
		{"list before range still range outer", "{x,y}-h[1:2]", []string{"x-h1", "y-h1", "x-h2", "y-h2"}},
		{
			"two ranges",
			"r[1:2]c[1:2]",
			[]string{"r1c1", "r1c2", "r2c1", "r2c2"},
		},
		{
			"two lists",
			"{a,b}.{x,y}",
			[]string{"a.x", "a.y", "b.x", "b.y"},
		},
		{
			"doc example",
			"web-[1:2]-io-{prod,dev}",
			[]string{"web-1-io-prod", "web-1-io-dev", "web-2-io-prod", "web-2-io-dev"},
		},
		{"stray closers are literal", "a]b}c", []string{"a]b}c"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Expand(tc.expr)
			require.NoError(t, err)
			require.Equal(t, tc.want, Names(got))
		})
	}
}

func TestExpandMalformed(t *testing.T) {
	cases := []struct {
		name string
		expr string
		msg  string
	}{
		{"unclosed range", "h[1:3", "no closing ']'"},
		{"range without colon", "h[13]", "no ':'"},
		{"non numeric bound", "h[a:3]", "invalid lower bound"},
		{"empty upper bound", "h[1:]", "invalid upper bound"},
		{"reversed range", "h[3:1]", "greater than upper bound"},
		{"unclosed list", "h{a,b", "no closing '}'"},
		{"closer before opener", "h}{a,b", "no closing '}'"},
		{"nested range", "h[[1:2]:3]", "invalid lower bound"},
		{"huge range", "h[0:2000000]", "more than"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Expand(tc.expr)
			require.ErrorIs(t, err, ErrMalformedExpression)
			require.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestExpandNoBracketsReturnsInput(t *testing.T) {
	for _, expr := range []string{"a", "a.b.c", "10.0.0.1", "host-with:colon", "x_y"} {
		got, err := Expand(expr)
		require.NoError(t, err)
		require.Equal(t, []ExpandedHost{{Name: expr}}, got)
	}
}

func TestExpandAllConcatenatesInOrder(t *testing.T) {
	got, err := ExpandAll([]string{"b[1:2]", "a{x,y}", "b1"})
	require.NoError(t, err)
	require.Equal(t, []string{"b1", "b2", "ax", "ay", "b1"}, Names(got))
}

func TestExpandAllStopsOnFirstError(t *testing.T) {
	_, err := ExpandAll([]string{"ok[1:2]", "bad[1:", "never"})
	require.ErrorIs(t, err, ErrMalformedExpression)
	require.ErrorContains(t, err, `"bad[1:"`)
}

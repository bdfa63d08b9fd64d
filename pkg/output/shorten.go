// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package output

import "strings"

// Placeholder replaces the shared domain suffix in display names.
const Placeholder = "*"

// CommonSuffix returns the longest domain suffix shared by every name,
// starting at a '.', or "" when there are fewer than two names, no such
// suffix exists, or removing it would leave some name empty.
func CommonSuffix(names []string) string {
	if len(names) < 2 {
		return ""
	}

	suffix := names[0]
	for _, name := range names[1:] {
		n := 0
		for n < len(suffix) && n < len(name) && suffix[len(suffix)-1-n] == name[len(name)-1-n] {
			n++
		}
		suffix = suffix[len(suffix)-n:]
		if suffix == "" {
			return ""
		}
	}

	dot := strings.IndexByte(suffix, '.')
	if dot < 0 {
		return ""
	}
	suffix = suffix[dot:]

	for _, name := range names {
		if len(name) == len(suffix) {
			return ""
		}
	}
	return suffix
}

// Shortener maps host names to display names.
type Shortener struct {
	Suffix string
}

// NewShortener computes the common suffix of names once.
func NewShortener(names []string) *Shortener {
	return &Shortener{Suffix: CommonSuffix(names)}
}

// Display returns name with the common suffix replaced by Placeholder.
func (s *Shortener) Display(name string) string {
	if s == nil || s.Suffix == "" || !strings.HasSuffix(name, s.Suffix) {
		return name
	}
	return strings.TrimSuffix(name, s.Suffix) + Placeholder
}

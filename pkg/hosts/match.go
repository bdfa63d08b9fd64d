// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package hosts

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern is returned when a host pattern is not a valid regular expression.
var ErrInvalidPattern = errors.New("invalid host pattern")

// Match returns every corpus entry containing a match of pattern, in corpus
// order. The pattern is unanchored unless it anchors itself.
func Match(pattern string, corpus []string) ([]ExpandedHost, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}

	var matched []ExpandedHost
	for _, name := range corpus {
		if re.MatchString(name) {
			matched = append(matched, ExpandedHost{Name: name})
		}
	}
	return matched, nil
}

// MatchAll matches each pattern against corpus and concatenates the results
// in the order the patterns were given.
func MatchAll(patterns []string, corpus []string) ([]ExpandedHost, error) {
	var all []ExpandedHost
	for _, p := range patterns {
		list, err := Match(p, corpus)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return all, nil
}

// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package hosts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxExpandedHosts caps the number of names a single expression may expand to.
const MaxExpandedHosts = 1_000_000

// ErrMalformedExpression is returned for any syntax error in a host expression.
var ErrMalformedExpression = errors.New("malformed host expression")

type rewriteFunc func(s string, start int) ([]string, error)

// Expand turns a host expression into an ordered list of host names.
//
// Two rewrite passes run over a work list: range expansion "prefix[LOW:HIGH]suffix"
// first, then list expansion "prefix{a,b,c}suffix". Each pass replaces the
// leftmost bracketed span of a string with its expansions, in place, until no
// string contains the opening bracket. The result therefore reads left to
// right: "web-[1:2]-{a,b}" gives web-1-a, web-1-b, web-2-a, web-2-b.
func Expand(expr string) ([]ExpandedHost, error) {
	work := []string{expr}

	var err error
	if work, err = rewrite(work, '[', expandRange); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedExpression, expr, err)
	}
	if work, err = rewrite(work, '{', expandList); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedExpression, expr, err)
	}

	return FromNames(work), nil
}

// ExpandAll expands every expression and concatenates the results in the
// order the expressions were given.
func ExpandAll(exprs []string) ([]ExpandedHost, error) {
	var all []ExpandedHost
	for _, expr := range exprs {
		list, err := Expand(expr)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return all, nil
}

// rewrite runs passes over work until no string contains open. One pass
// rewrites at most the leftmost span of each string, keeping the expansions
// at the position of the string they came from.
func rewrite(work []string, open byte, fn rewriteFunc) ([]string, error) {
	for pending := true; pending; {
		pending = false
		next := make([]string, 0, len(work))
		for _, s := range work {
			start := strings.IndexByte(s, open)
			if start < 0 {
				next = append(next, s)
				continue
			}
			parts, err := fn(s, start)
			if err != nil {
				return nil, err
			}
			if len(next)+len(parts) > MaxExpandedHosts {
				return nil, fmt.Errorf("expands to more than %d hosts", MaxExpandedHosts)
			}
			next = append(next, parts...)
			pending = true
		}
		work = next
	}
	return work, nil
}

func expandRange(s string, start int) ([]string, error) {
	end := strings.IndexByte(s[start:], ']')
	if end < 0 {
		return nil, fmt.Errorf("range at offset %d has no closing ']', want '[a:b]'", start)
	}
	end += start

	lowText, highText, ok := strings.Cut(s[start+1:end], ":")
	if !ok {
		return nil, fmt.Errorf("range at offset %d has no ':', want '[a:b]'", start)
	}
	low, err := strconv.Atoi(lowText)
	if err != nil {
		return nil, fmt.Errorf("range at offset %d: invalid lower bound %q", start, lowText)
	}
	high, err := strconv.Atoi(highText)
	if err != nil {
		return nil, fmt.Errorf("range at offset %d: invalid upper bound %q", start, highText)
	}
	if low > high {
		return nil, fmt.Errorf("range at offset %d: lower bound %d is greater than upper bound %d", start, low, high)
	}
	if span := high - low; span < 0 || span >= MaxExpandedHosts {
		return nil, fmt.Errorf("range at offset %d expands to more than %d hosts", start, MaxExpandedHosts)
	}

	prefix, suffix := s[:start], s[end+1:]
	out := make([]string, 0, high-low+1)
	for v := low; ; v++ {
		out = append(out, prefix+strconv.Itoa(v)+suffix)
		if v == high {
			break
		}
	}
	return out, nil
}

func expandList(s string, start int) ([]string, error) {
	end := strings.IndexByte(s[start:], '}')
	if end < 0 {
		return nil, fmt.Errorf("list at offset %d has no closing '}', want '{one,two}'", start)
	}
	end += start

	prefix, suffix := s[:start], s[end+1:]
	items := strings.Split(s[start+1:end], ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, prefix+item+suffix)
	}
	return out, nil
}

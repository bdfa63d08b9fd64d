// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

// Package resolve maps de-duplicated host names to network addresses
// concurrently while keeping the caller's ordering.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vmware/ssh-fanout/pkg/hosts"
	"github.com/vmware/ssh-fanout/pkg/logging"
)

var logger = logging.For("resolver")

// ErrNoAddress is recorded for a name whose lookup succeeded with zero addresses.
var ErrNoAddress = errors.New("no addresses found")

// Lookup resolves a host name to its addresses. *net.Resolver satisfies it.
type Lookup interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// ResolvedHost is the outcome of resolving one IndexedHost. Addr is nil when
// the name could not be resolved; Err then says why.
type ResolvedHost struct {
	Name  string
	Index int
	Addr  net.IP
	Err   error
}

// Resolved reports whether the host carries a usable address.
func (h ResolvedHost) Resolved() bool {
	return h.Addr != nil
}

// Resolver resolves host lists with a Lookup.
type Resolver struct {
	Lookup Lookup
}

// New returns a Resolver using lookup, or the system resolver when lookup is nil.
func New(lookup Lookup) *Resolver {
	if lookup == nil {
		lookup = net.DefaultResolver
	}
	return &Resolver{Lookup: lookup}
}

// Resolve looks up every host concurrently and returns exactly one
// ResolvedHost per input, sorted by Index. At most limit lookups run at once;
// limit <= 0 means one lookup per host, all at once.
func (r *Resolver) Resolve(ctx context.Context, list []hosts.IndexedHost, limit int) []ResolvedHost {
	var (
		mu      sync.Mutex
		results = make([]ResolvedHost, 0, len(list))
	)

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, h := range list {
		g.Go(func() error {
			res := r.resolveOne(ctx, h)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, h hosts.IndexedHost) ResolvedHost {
	res := ResolvedHost{Name: h.Name, Index: h.Index}

	if ip := net.ParseIP(h.Name); ip != nil {
		res.Addr = ip
		return res
	}

	addrs, err := r.Lookup.LookupIPAddr(ctx, h.Name)
	if err != nil {
		res.Err = fmt.Errorf("lookup %s: %w", h.Name, err)
		return res
	}
	if len(addrs) == 0 {
		res.Err = fmt.Errorf("lookup %s: %w", h.Name, ErrNoAddress)
		return res
	}
	if len(addrs) > 1 {
		logger.WithFields(logrus.Fields{
			"host":  h.Name,
			"addrs": len(addrs),
			"using": addrs[0].IP.String(),
		}).Debug("host has several addresses, using the first")
	}

	res.Addr = addrs[0].IP
	return res
}

// Partition splits resolved hosts into those with an address and those
// without, keeping order in both.
func Partition(list []ResolvedHost) (resolved, unresolved []ResolvedHost) {
	for _, h := range list {
		if h.Resolved() {
			resolved = append(resolved, h)
		} else {
			unresolved = append(unresolved, h)
		}
	}
	return resolved, unresolved
}

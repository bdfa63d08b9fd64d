// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package resolve

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmware/ssh-fanout/pkg/hosts"
)

type fakeLookup struct {
	mu       sync.Mutex
	addrs    map[string][]string
	delays   map[string]time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    []string
	// gate, when set, holds each lookup until all expected lookups have started.
	gate *sync.WaitGroup
}

func (f *fakeLookup) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		old := f.maxSeen.Load()
		if n <= old || f.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, host)
	f.mu.Unlock()

	if f.gate != nil {
		f.gate.Done()
		f.gate.Wait()
	}

	if d, ok := f.delays[host]; ok {
		time.Sleep(d)
	}

	list, ok := f.addrs[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	out := make([]net.IPAddr, 0, len(list))
	for _, a := range list {
		out = append(out, net.IPAddr{IP: net.ParseIP(a)})
	}
	return out, nil
}

func indexed(names ...string) []hosts.IndexedHost {
	list := make([]hosts.ExpandedHost, 0, len(names))
	for _, n := range names {
		list = append(list, hosts.ExpandedHost{Name: n})
	}
	return hosts.Dedup(list)
}

func TestResolveKeepsInputOrder(t *testing.T) {
	gate := &sync.WaitGroup{}
	gate.Add(3)
	lookup := &fakeLookup{
		gate: gate,
		addrs: map[string][]string{
			"slow": {"10.0.0.1"},
			"mid":  {"10.0.0.2"},
			"fast": {"10.0.0.3"},
		},
		delays: map[string]time.Duration{
			"slow": 60 * time.Millisecond,
			"mid":  30 * time.Millisecond,
		},
	}

	got := New(lookup).Resolve(context.Background(), indexed("slow", "mid", "fast"), 0)

	require.Len(t, got, 3)
	for i, want := range []struct{ name, addr string }{
		{"slow", "10.0.0.1"},
		{"mid", "10.0.0.2"},
		{"fast", "10.0.0.3"},
	} {
		assert.Equal(t, i, got[i].Index)
		assert.Equal(t, want.name, got[i].Name)
		assert.Equal(t, want.addr, got[i].Addr.String())
		assert.NoError(t, got[i].Err)
	}
	assert.Equal(t, int32(3), lookup.maxSeen.Load(), "lookups should overlap")
}

func TestResolveUnresolvableIsRecorded(t *testing.T) {
	lookup := &fakeLookup{addrs: map[string][]string{
		"good":  {"192.168.1.10"},
		"empty": {},
	}}

	got := New(lookup).Resolve(context.Background(), indexed("good", "missing", "empty"), 0)

	require.Len(t, got, 3)
	assert.True(t, got[0].Resolved())

	assert.False(t, got[1].Resolved())
	assert.Nil(t, got[1].Addr)
	var dnsErr *net.DNSError
	assert.True(t, errors.As(got[1].Err, &dnsErr))
	assert.Contains(t, got[1].Err.Error(), "missing")

	assert.False(t, got[2].Resolved())
	assert.ErrorIs(t, got[2].Err, ErrNoAddress)
}

func TestResolveFirstAddressWins(t *testing.T) {
	lookup := &fakeLookup{addrs: map[string][]string{
		"multi": {"10.1.1.1", "10.1.1.2", "fd00::1"},
	}}

	got := New(lookup).Resolve(context.Background(), indexed("multi"), 0)

	require.Len(t, got, 1)
	assert.Equal(t, "10.1.1.1", got[0].Addr.String())
}

func TestResolveIPLiteralSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{}

	got := New(lookup).Resolve(context.Background(), indexed("127.0.0.1", "::1"), 0)

	require.Len(t, got, 2)
	assert.Equal(t, "127.0.0.1", got[0].Addr.String())
	assert.Equal(t, "::1", got[1].Addr.String())
	assert.Empty(t, lookup.calls)
}

func TestResolveHonoursLimit(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	lookup := &fakeLookup{addrs: map[string][]string{}, delays: map[string]time.Duration{}}
	for _, n := range names {
		lookup.addrs[n] = []string{"10.0.0.1"}
		lookup.delays[n] = 10 * time.Millisecond
	}

	got := New(lookup).Resolve(context.Background(), indexed(names...), 2)

	assert.Len(t, got, len(names))
	assert.LessOrEqual(t, lookup.maxSeen.Load(), int32(2))
}

func TestResolveEmpty(t *testing.T) {
	got := New(&fakeLookup{}).Resolve(context.Background(), nil, 0)
	assert.Empty(t, got)
}

func TestPartition(t *testing.T) {
	list := []ResolvedHost{
		{Name: "a", Index: 0, Addr: net.ParseIP("10.0.0.1")},
		{Name: "b", Index: 1, Err: ErrNoAddress},
		{Name: "c", Index: 2, Addr: net.ParseIP("10.0.0.3")},
	}

	resolved, unresolved := Partition(list)

	require.Len(t, resolved, 2)
	assert.Equal(t, "a", resolved[0].Name)
	assert.Equal(t, "c", resolved[1].Name)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "b", unresolved[0].Name)
}

func TestNewDefaultsToSystemResolver(t *testing.T) {
	r := New(nil)
	assert.Equal(t, net.DefaultResolver, r.Lookup)
}

// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

package resolve

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const defaultDNSTimeout = 5 * time.Second

// DNSLookup resolves names by querying a single nameserver directly,
// bypassing the system resolver configuration.
type DNSLookup struct {
	// Server is "host" or "host:port"; port 53 is assumed when absent.
	Server  string
	Timeout time.Duration
}

// NewDNSLookup returns a DNSLookup for server.
func NewDNSLookup(server string) *DNSLookup {
	return &DNSLookup{Server: server}
}

func (l *DNSLookup) address() string {
	if _, _, err := net.SplitHostPort(l.Server); err == nil {
		return l.Server
	}
	return net.JoinHostPort(l.Server, "53")
}

// LookupIPAddr queries A records, then AAAA records, and returns the A
// answers followed by the AAAA answers.
func (l *DNSLookup) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IPAddr{{IP: ip}}, nil
	}

	timeout := l.Timeout
	if timeout == 0 {
		timeout = defaultDNSTimeout
	}
	client := &dns.Client{Timeout: timeout}

	var addrs []net.IPAddr
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(host), qtype)
		msg.RecursionDesired = true

		resp, _, err := client.ExchangeContext(ctx, msg, l.address())
		if err != nil {
			return nil, fmt.Errorf("query %s %s at %s: %w", dns.TypeToString[qtype], host, l.Server, err)
		}
		if resp.Rcode == dns.RcodeNameError {
			return nil, &net.DNSError{Err: "no such host", Name: host, Server: l.Server, IsNotFound: true}
		}
		if resp.Rcode != dns.RcodeSuccess {
			return nil, fmt.Errorf("query %s %s at %s: %s", dns.TypeToString[qtype], host, l.Server, dns.RcodeToString[resp.Rcode])
		}

		for _, rr := range resp.Answer {
			switch v := rr.(type) {
			case *dns.A:
				addrs = append(addrs, net.IPAddr{IP: v.A})
			case *dns.AAAA:
				addrs = append(addrs, net.IPAddr{IP: v.AAAA})
			}
		}
	}
	return addrs, nil
}

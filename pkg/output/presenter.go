// Copyright (c) 2025 Broadcom. All Rights Reserved.
// Broadcom Confidential. The term "Broadcom" refers to Broadcom Inc.
// and/or its subsidiaries.

// Package output renders live per-host output blocks and run summaries.
package output

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/vmware/ssh-fanout/pkg/resolve"
)

const (
	openMark  = ">>>"
	closeMark = "<<<"
)

// Presenter is the single writer for everything shown on stdout during a
// run. Lines from many hosts arrive concurrently; each is written inside a
// delimited block for its host, and a block is only switched when a line
// for a different host arrives.
type Presenter struct {
	mu        sync.Mutex
	w         io.Writer
	styles    Styles
	shortener *Shortener
	open      string
	isOpen    bool
}

// NewPresenter writes to w, shortening names with shortener (may be nil).
func NewPresenter(w io.Writer, shortener *Shortener) *Presenter {
	return &Presenter{
		w:         w,
		styles:    NewStyles(w),
		shortener: shortener,
	}
}

// DisplayName returns the name shown for a host.
func (p *Presenter) DisplayName(name string) string {
	return p.shortener.Display(name)
}

// Line writes one line of output attributed to the host with display
// name host.
func (p *Presenter) Line(host, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isOpen || p.open != host {
		p.closeLocked()
		fmt.Fprintln(p.w, p.styles.Delimiter.Render(openMark), p.styles.Host.Render(host))
		p.open = host
		p.isOpen = true
	}
	fmt.Fprintln(p.w, line)
}

// Close ends the open block, if any.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Presenter) closeLocked() {
	if !p.isOpen {
		return
	}
	fmt.Fprintln(p.w, p.styles.Delimiter.Render(closeMark), p.styles.Host.Render(p.open))
	p.isOpen = false
	p.open = ""
}

// Stream returns line-splitting writers for the host's stdout and stderr.
func (p *Presenter) Stream(host resolve.ResolvedHost) (stdout, stderr io.WriteCloser) {
	name := p.DisplayName(host.Name)
	return &lineWriter{p: p, host: name}, &lineWriter{p: p, host: name}
}

// lineWriter forwards complete lines to the presenter as they arrive and
// the trailing partial line on Close.
type lineWriter struct {
	p    *Presenter
	host string
	buf  []byte
}

func (lw *lineWriter) Write(b []byte) (int, error) {
	lw.buf = append(lw.buf, b...)
	for {
		i := bytes.IndexByte(lw.buf, '\n')
		if i < 0 {
			break
		}
		lw.p.Line(lw.host, string(bytes.TrimSuffix(lw.buf[:i], []byte{'\r'})))
		lw.buf = lw.buf[i+1:]
	}
	return len(b), nil
}

func (lw *lineWriter) Close() error {
	if len(lw.buf) > 0 {
		lw.p.Line(lw.host, string(lw.buf))
		lw.buf = nil
	}
	return nil
}

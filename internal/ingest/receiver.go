// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"github.com/sapcc/go-bits/logg"
)

// generous upper bound for one CSV order record
const maxDatagramSize = 8192

// Receiver owns the datagram socket that order producers broadcast to, and
// forwards payloads on a channel so that the Batcher can select on
// data-or-timer-or-shutdown with a single readiness wait.
type Receiver struct {
	conn      net.PacketConn
	datagrams chan string
}

// ListenForOrders binds the order socket on all interfaces. Bind failure is
// unrecoverable for the engine; the caller exits nonzero on error.
func ListenForOrders(ctx context.Context, port int) (*Receiver, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	conn, err := lc.ListenPacket(ctx, "udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("cannot bind order socket on UDP port %d: %w", port, err)
	}
	logg.Info("listening for orders on %s", conn.LocalAddr().String())
	return &Receiver{
		conn:      conn,
		datagrams: make(chan string),
	}, nil
}

// Datagrams returns the channel of received payloads. It is closed when Run
// returns.
func (r *Receiver) Datagrams() <-chan string {
	return r.datagrams
}

// Run reads datagrams until ctx expires. Meant to be called in a goroutine
// of its own next to the Batcher.
func (r *Receiver) Run(ctx context.Context) {
	// unblock the read below when shutdown is requested
	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()
	defer close(r.datagrams)

	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() == nil {
				logg.Error("receive on order socket failed: %s", err.Error())
			}
			return
		}
		select {
		case r.datagrams <- string(buf[:n]):
		case <-ctx.Done():
			return
		}
	}
}

// Package relay implements the gateway's bidirectional socket relay: a
// VM-side server endpoint (accepts one GCS client at a time) and a
// PX4-side client endpoint, composed so that VM→PX4 traffic passes through
// the filter pipeline and PX4→VM traffic passes through unfiltered.
//
// The source this is ported from models each endpoint as an edge-triggered
// callback that re-arms itself with the network stack after every
// invocation (spec.md §9, "Callback self-re-arming"). Go's goroutine-per-
// connection model is the natural target-language equivalent: each
// endpoint's read loop runs to completion just like the callback, and
// blocks on the next Read instead of waiting to be re-armed.
package relay

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"SerialFilter/internal/config"
	"SerialFilter/internal/filter"
	"SerialFilter/internal/telemetry"
)

const scratchBufferSize = 1500

// px4DialAttempts and px4DialBackoff bound the PX4-side connect retry: the
// discovery phase keeps a session alive across a momentarily-refused
// connection (PX4 still booting, container network still settling) instead
// of giving up on the first dial.
const (
	px4DialAttempts = 5
	px4DialBackoff  = 500 * time.Millisecond
)

// endpoint is one socket endpoint's connection state. Both endpoints are
// owned by the Relay composition root; an endpoint holds no reference to
// its sibling, which is reached through the Relay instead, matching
// spec.md §9's "relation-by-lookup" guidance.
type endpoint struct {
	mu        sync.Mutex
	conn      net.Conn
	connected bool
}

func (e *endpoint) set(conn net.Conn) {
	e.mu.Lock()
	e.conn = conn
	e.connected = conn != nil
	e.mu.Unlock()
}

func (e *endpoint) clear() {
	e.mu.Lock()
	if e.conn != nil {
		e.conn.Close()
	}
	e.conn = nil
	e.connected = false
	e.mu.Unlock()
}

// writeIfConnected implements the drop-on-unready backpressure policy
// (spec.md §5): if the peer endpoint isn't connected, bytes are dropped
// silently rather than queued. sharedMu is the cross-endpoint mutex
// guarding this write against the sibling endpoint's own critical section.
func (e *endpoint) writeIfConnected(sharedMu *sync.Mutex, b []byte) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	e.mu.Lock()
	conn, connected := e.conn, e.connected
	e.mu.Unlock()

	if !connected {
		return
	}
	// Write exactly len(b) bytes; writing anything other than the actual
	// filtered/relayed length was a known bug in the source this is ported
	// from (spec.md §9) and is deliberately not replicated.
	if _, err := conn.Write(b); err != nil {
		telemetry.Error("relay: write to peer failed: %v", err)
	}
}

// Relay is the composition root owning both endpoints and the filter
// pipeline for the VM→PX4 direction.
type Relay struct {
	cfg     *config.Config
	metrics *telemetry.Metrics
	pipe    *filter.Pipeline

	sharedMu sync.Mutex // SharedResourceMutex: guards the peer-readiness check and the write to the peer

	vm  endpoint
	px4 endpoint
}

// New builds a Relay against cfg, recording verdict/framing metrics on m.
func New(cfg *config.Config, m *telemetry.Metrics) *Relay {
	return &Relay{
		cfg:     cfg,
		metrics: m,
		pipe:    filter.New(m),
	}
}

// Run listens on the VM-side address and, for each accepted client,
// connects to PX4 and relays traffic until the GCS client disconnects, then
// goes back to accepting. A PX4 disconnect closes only the PX4 side; GCS
// bytes are then dropped until the GCS client disconnects. It blocks until the listener is closed or
// accept fails fatally.
func (r *Relay) Run() error {
	listener, err := net.Listen("tcp", r.cfg.Network.VMListenAddress)
	if err != nil {
		return fmt.Errorf("relay: bootstrap: listen %s: %w", r.cfg.Network.VMListenAddress, err)
	}
	defer listener.Close()

	telemetry.Info("relay: listening for GCS on %s", r.cfg.Network.VMListenAddress)

	for {
		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("relay: bootstrap: accept: %w", err)
		}
		r.handleSession(conn)
	}
}

// handleSession implements the Listening→Connected transition for the
// VM-side server: accept, trigger the PX4-side connect, then run both
// endpoints' read loops. The session ends when the VM side terminates,
// which also closes the PX4 side.
func (r *Relay) handleSession(vmConn net.Conn) {
	sessionID := uuid.New().String()
	telemetry.Info("relay[%s]: accepted GCS connection from %s", sessionID, vmConn.RemoteAddr())

	r.vm.set(vmConn)
	r.metrics.VMConnected.Set(1)
	defer func() {
		r.vm.clear()
		r.metrics.VMConnected.Set(0)
	}()

	px4Addr := fmt.Sprintf("%s:%d", r.cfg.Network.PX4TargetHost, r.cfg.Network.PX4TargetPort)
	px4Conn, err := r.dialPX4(sessionID, px4Addr)
	if err != nil {
		telemetry.Warn("relay[%s]: PX4 connect to %s failed after %d attempts: %v", sessionID, px4Addr, px4DialAttempts, err)
	} else {
		r.px4.set(px4Conn)
		r.metrics.PX4Connected.Set(1)
	}
	defer func() {
		r.px4.clear()
		r.metrics.PX4Connected.Set(0)
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.pumpVMToPX4(sessionID, vmConn)
		// Closing PX4 unblocks its read loop so the session can end.
		r.px4.clear()
	}()
	go func() {
		defer wg.Done()
		if px4Conn != nil {
			r.pumpPX4ToVM(sessionID, px4Conn)
			r.px4.clear()
			r.metrics.PX4Connected.Set(0)
		}
	}()
	wg.Wait()

	telemetry.Info("relay[%s]: session ended", sessionID)
}

// dialPX4 connects to addr from the gateway's PX4-interface local address,
// retrying with a fixed backoff rather than failing the session outright on
// a single refused connection (PX4's TCP listener may not be up yet when
// the GCS side connects; spec.md's discovery phase tolerates that race).
func (r *Relay) dialPX4(sessionID, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	if local := r.cfg.Network.PX4LocalAddress; local != "" {
		dialer.LocalAddr = &net.TCPAddr{IP: net.ParseIP(local)}
	}

	var lastErr error
	for attempt := 1; attempt <= px4DialAttempts; attempt++ {
		conn, err := dialer.Dial("tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		telemetry.Debug("relay[%s]: PX4 connect attempt %d/%d to %s failed: %v", sessionID, attempt, px4DialAttempts, addr, err)
		if attempt < px4DialAttempts {
			time.Sleep(px4DialBackoff)
		}
	}
	return nil, lastErr
}

// pumpVMToPX4 is the VM-side endpoint's Connected/READ handling: read,
// filter, and write the filtered output to PX4 if PX4 is connected.
func (r *Relay) pumpVMToPX4(sessionID string, conn net.Conn) {
	buf := make([]byte, scratchBufferSize)
	var out []byte
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			out = r.pipe.Run(buf[:n], out[:0])
			if len(out) > 0 {
				r.px4.writeIfConnected(&r.sharedMu, out)
			}
		}
		if err != nil {
			telemetry.Debug("relay[%s]: VM endpoint closed: %v", sessionID, err)
			return
		}
	}
}

// pumpPX4ToVM is the PX4-side endpoint's Connected/READ handling:
// unfiltered passthrough to the VM endpoint if it is connected.
func (r *Relay) pumpPX4ToVM(sessionID string, conn net.Conn) {
	buf := make([]byte, scratchBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			r.vm.writeIfConnected(&r.sharedMu, buf[:n])
		}
		if err != nil {
			telemetry.Debug("relay[%s]: PX4 endpoint closed: %v", sessionID, err)
			return
		}
	}
}

// FramingErrors reports the filter pipeline's cumulative framing-error
// count, for periodic metrics reporting.
func (r *Relay) FramingErrors() uint64 {
	return r.pipe.FramingErrors()
}

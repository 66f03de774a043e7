package relay

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"SerialFilter/internal/config"
	"SerialFilter/internal/mavlink"
	"SerialFilter/internal/telemetry"
)

func heartbeatWire(seq byte) []byte {
	f := &mavlink.Frame{MsgID: 0, Sequence: seq, SystemID: 1, CompID: 1, Payload: make([]byte, 9)}
	return f.Encode()
}

func newTestRelay() *Relay {
	cfg := &config.Config{}
	return New(cfg, telemetry.New())
}

func TestPumpVMToPX4_ForwardsFilteredBytesWhenPX4Connected(t *testing.T) {
	r := newTestRelay()

	vmServer, vmClient := net.Pipe()
	px4Server, px4Client := net.Pipe()
	defer vmClient.Close()
	defer px4Client.Close()

	r.px4.set(px4Server)

	go r.pumpVMToPX4("test", vmServer)

	wire := heartbeatWire(1)
	go func() {
		_, _ = vmClient.Write(wire)
	}()

	px4Client.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, len(wire))
	n, err := readFull(px4Client, got)
	require.NoError(t, err)
	require.Equal(t, wire, got[:n])
}

func TestPumpVMToPX4_DropsWhenPX4NotConnected(t *testing.T) {
	r := newTestRelay()

	vmServer, vmClient := net.Pipe()
	defer vmClient.Close()
	defer vmServer.Close()

	done := make(chan struct{})
	go func() {
		r.pumpVMToPX4("test", vmServer)
		close(done)
	}()

	wire := heartbeatWire(1)
	_, err := vmClient.Write(wire)
	require.NoError(t, err)

	vmClient.Close()
	<-done
	// No PX4 peer was ever set; nothing should have been written anywhere,
	// and pumpVMToPX4 must return cleanly once its source closes.
}

func TestEndpoint_WriteIfConnected_DropsWhenNotConnected(t *testing.T) {
	var e endpoint
	var mu sync.Mutex
	// Not connected: writeIfConnected must return without panicking or blocking.
	e.writeIfConnected(&mu, []byte("hello"))
}

func readFull(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

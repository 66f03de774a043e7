// Package simcoupler relays simulator telemetry from PX4 toward the
// VM-side GCS without filtering — the companion component spec.md §1
// explicitly keeps out of the filtering core. It is grounded on
// SimCoupler.c: the VM side listens for its peer and the PX4 side dials
// PX4; frames read on the PX4 side are forwarded unfiltered to the VM
// side, and nothing received on the VM side is relayed.
//
// Unlike the filtering relay, this component has no security-relevant
// parsing to do, so it is built directly on gomavlib's Node rather than
// the hand-rolled mavlink package — the same library the teacher used for
// its own listener/sender pair.
package simcoupler

import (
	"fmt"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"SerialFilter/internal/config"
	"SerialFilter/internal/telemetry"
)

// Coupler owns the two gomavlib nodes relaying PX4 telemetry to the VM.
type Coupler struct {
	px4Node *gomavlib.Node
	vmNode  *gomavlib.Node
	metrics *telemetry.Metrics
}

// New builds a Coupler from cfg.Simcoupler. The VM node listens as a TCP
// server and the PX4 node is a TCP client of PX4TargetHost:PX4TargetPort,
// the same server/client split as the main relay.
func New(cfg *config.Config, m *telemetry.Metrics) (*Coupler, error) {
	vmNode, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints: []gomavlib.EndpointConf{
			gomavlib.EndpointTCPServer{Address: cfg.Simcoupler.VMListenAddress},
		},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V1,
		OutSystemID: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("simcoupler: bootstrap VM endpoint: %w", err)
	}

	px4Addr := fmt.Sprintf("%s:%d", cfg.Simcoupler.PX4TargetHost, cfg.Simcoupler.PX4TargetPort)
	px4Node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints: []gomavlib.EndpointConf{
			gomavlib.EndpointTCPClient{Address: px4Addr},
		},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V1,
		OutSystemID: 1,
	})
	if err != nil {
		vmNode.Close()
		return nil, fmt.Errorf("simcoupler: bootstrap PX4 endpoint: %w", err)
	}

	return &Coupler{px4Node: px4Node, vmNode: vmNode, metrics: m}, nil
}

// Run relays every event received on the PX4 endpoint to the VM endpoint,
// unfiltered, until the PX4 node's event channel closes.
func (c *Coupler) Run() {
	telemetry.Info("simcoupler: relaying PX4 telemetry unfiltered")
	for evt := range c.px4Node.Events() {
		frameEvt, ok := evt.(*gomavlib.EventFrame)
		if !ok {
			continue
		}
		c.vmNode.WriteFrameAll(frameEvt.Frame)
		c.metrics.SimcouplerBytes.WithLabelValues("px4_to_vm").Inc()
	}
}

// Close releases both nodes' sockets.
func (c *Coupler) Close() {
	c.px4Node.Close()
	c.vmNode.Close()
}

// Package connectivity answers whether the AroundEgypt API is reachable.
//
// The answer decides, per operation, whether the catalog goes to the network
// or to the on-device cache. A request failing while connected does not
// flip the state; only probes and overrides do.
package connectivity

import "sync/atomic"

// Oracle reports current network reachability.
type Oracle interface {
	IsConnected() bool
}

// Static is an Oracle with a fixed, settable answer.
type Static struct {
	connected atomic.Bool
}

func NewStatic(connected bool) *Static {
	s := &Static{}
	s.connected.Store(connected)
	return s
}

func (s *Static) IsConnected() bool {
	return s.connected.Load()
}

func (s *Static) Set(connected bool) {
	s.connected.Store(connected)
}

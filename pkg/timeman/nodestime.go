package timeman

import "github.com/ChizhovVadim/CounterTM/pkg/common"

// convertToNodes switches the clock to nodes as time. The node budget of the
// game is taken from the first move only; later moves see whatever
// AdvanceNodesTime left of it.
// npmsec must be well below the real engine speed or the engine loses on time.
func (m *Manager) convertToNodes(limits *common.LimitsType, us common.Color, npmsec int64) {
	m.useNodesTime = true

	if m.availableNodes == 0 {
		m.availableNodes = npmsec * limits.Time[us]
	}

	limits.Time[us] = m.availableNodes
	limits.Inc[us] *= npmsec
	limits.NodesTime = npmsec
}

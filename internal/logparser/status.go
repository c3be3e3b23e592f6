package logparser

// HostStatus is the aggregate outcome of a run on one host.
type HostStatus string

const (
	HostOK      HostStatus = "ok"
	HostChanged HostStatus = "changed"
	HostFailed  HostStatus = "failed"
)

// DetermineStatus derives a host's aggregate status from its recap counts.
// Any failure or unreachable count wins over changes.
func DetermineStatus(c Counts) HostStatus {
	if c.Failed > 0 || c.Unreachable > 0 {
		return HostFailed
	}
	if c.Changed > 0 {
		return HostChanged
	}
	return HostOK
}

// Status returns the aggregate status of the host.
func (h Host) Status() HostStatus {
	return DetermineStatus(h.Counts)
}

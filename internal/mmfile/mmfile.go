// Package mmfile maps input files read-only so large traces can be parsed
// without copying them onto the Go heap.
package mmfile

// Mapping is a read-only view of a file. Data is valid until Close.
type Mapping struct {
	Data  []byte
	close func() error
}

// Close releases the mapping. Calling Close more than once is a no-op.
func (m *Mapping) Close() error {
	m.Data = nil
	if m.close == nil {
		return nil
	}
	err := m.close()
	m.close = nil
	return err
}

package nlggen

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the MessagePack-encoded record of one generation run: the
// plan that was rendered and the diagnostics raised along the way.
type Snapshot struct {
	Version     string       `msgpack:"version"`
	Source      string       `msgpack:"source"`
	Plan        *Plan        `msgpack:"plan"`
	Diagnostics []Diagnostic `msgpack:"diagnostics"`
}

// EncodeSnapshot writes a snapshot as MessagePack.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode plan snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	dec := msgpack.NewDecoder(r)
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode plan snapshot: %w", err)
	}
	if s.Plan == nil {
		s.Plan = &Plan{}
	}
	return &s, nil
}

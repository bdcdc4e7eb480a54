package pakgo

import (
	"fmt"

	"github.com/hupe1980/pakgo/index"
)

// Verify re-checks the artifact's structural invariants beyond what open
// already validated: every index run must parse cleanly from its raw bytes
// (sorted entries, consistent kinds, exact entry counts) and every pointer
// must land inside the data segment.
//
// Verify reads the whole index section; use it in integrity tooling, not on
// the serving path.
func (r *Reader) Verify() error {
	if r.closed.Load() {
		return ErrReaderClosed
	}

	for _, e := range r.dir {
		runStart := r.footer.IndexSegmentOffset + e.IndexOffset
		run := r.data[runStart : runStart+e.IndexLength]

		// Parse from the raw run even if a cached copy exists.
		ix, err := index.Parse(e.Key, run, e.EntryCount)
		if err != nil {
			return translateError(err)
		}

		for i := 0; i < ix.Len(); i++ {
			ptr := ix.At(i).Ptr
			end := ptr.Offset + ptr.Length
			if end < ptr.Offset || end > r.footer.DataLength {
				return &FormatError{cause: fmt.Errorf(
					"index %q entry %d: pointer %v outside data segment of %d bytes",
					e.Key, i, ptr, r.footer.DataLength)}
			}
		}
	}
	return nil
}

package pakgo

import (
	"bytes"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/pakgo/format"
	"github.com/hupe1980/pakgo/value"
)

// Stats summarizes an artifact's layout and index shape.
type Stats struct {
	Size           int64  // artifact size in bytes
	Records        uint64 // user records, meta excluded
	DataBytes      uint64
	IndexBytes     uint64
	DirectoryBytes uint64
	Indexes        []IndexStats // ascending by key, library-owned keys excluded
}

// IndexStats describes one key's index run.
type IndexStats struct {
	Key            string
	Kind           value.Kind
	Entries        uint64
	DistinctValues uint64
	// DistinctRecords counts distinct referenced records, keyed by their
	// data offset.
	DistinctRecords uint64
	Bytes           uint64
}

// Stats walks every index run and reports per-key cardinalities alongside
// the segment sizes. Runs not yet cached are parsed on the way.
func (r *Reader) Stats() (Stats, error) {
	if r.closed.Load() {
		return Stats{}, ErrReaderClosed
	}

	st := Stats{
		Size:           r.Size(),
		Records:        r.Count(),
		DataBytes:      r.footer.DataLength,
		IndexBytes:     r.footer.DirectoryOffset - r.footer.IndexSegmentOffset,
		DirectoryBytes: uint64(r.Size()) - format.FooterSize - r.footer.DirectoryOffset,
	}

	for _, e := range r.dir {
		if strings.HasPrefix(e.Key, reservedKeyPrefix) {
			continue
		}
		ix, _, err := r.Index(e.Key)
		if err != nil {
			return Stats{}, err
		}

		is := IndexStats{
			Key:     e.Key,
			Kind:    ix.Kind(),
			Entries: uint64(ix.Len()),
			Bytes:   e.IndexLength,
		}

		offsets := roaring64.New()
		var prev []byte
		for i := 0; i < ix.Len(); i++ {
			ent := ix.At(i)
			offsets.Add(ent.Ptr.Offset)
			if i == 0 || !bytes.Equal(ent.Encoded, prev) {
				is.DistinctValues++
			}
			prev = ent.Encoded
		}
		is.DistinctRecords = offsets.GetCardinality()

		st.Indexes = append(st.Indexes, is)
	}
	return st, nil
}

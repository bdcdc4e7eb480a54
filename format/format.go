// Package format defines the binary layout of a pak artifact and the
// low-level readers and writers for its fixed sections.
//
// A pak file has five sections:
//
//	┌────────────┬──────────────┬───────────────┬─────────────┬────────────┐
//	│ Header 8B  │ Data segment │ Index segment │  Directory  │ Footer 48B │
//	└────────────┴──────────────┴───────────────┴─────────────┴────────────┘
//
// The header carries the magic number and format version. The data segment is
// the concatenation of record bytes in insertion order. The index segment
// holds one sorted entry run per indexed key. The directory maps key names to
// their runs, and the footer carries the absolute offsets of everything plus
// the record count and a repeated version for validation.
//
// All structural integers are little-endian. The encoded values inside index
// runs use the canonical big-endian forms from the value package, because
// their byte order carries the ordering semantics.
package format

import "errors"

const (
	// Magic identifies pak artifacts (ASCII: "PAK0").
	Magic = 0x50414B30
	// Version is the current artifact format version.
	Version = 1

	// HeaderSize is the wire size of the Header.
	HeaderSize = 8
	// FooterSize is the wire size of the Footer.
	FooterSize = 48

	// MinFileSize is the smallest possible artifact: header plus footer with
	// empty data, index and directory sections.
	MinFileSize = HeaderSize + FooterSize
)

var (
	// ErrInvalidMagic is returned when an artifact does not start with Magic.
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrInvalidVersion is returned for unsupported or inconsistent versions.
	ErrInvalidVersion = errors.New("unsupported version")
	// ErrTruncated is returned when an artifact is shorter than its sections
	// claim.
	ErrTruncated = errors.New("truncated artifact")
	// ErrCorrupted is returned when section arithmetic or ordering rules do
	// not hold.
	ErrCorrupted = errors.New("corrupted artifact")
)

// Header is the fixed 8-byte section at the start of every artifact.
type Header struct {
	Magic   uint32
	Version uint32
}

// Footer is the fixed 48-byte section at the end of every artifact. Offsets
// are absolute file offsets; the version is repeated from the header for
// validation.
type Footer struct {
	DataOffset         uint64
	DataLength         uint64
	IndexSegmentOffset uint64
	DirectoryOffset    uint64
	RecordCount        uint64
	Version            uint64
}

// DirectoryEntry locates one key's index run. IndexOffset is relative to the
// index segment start.
type DirectoryEntry struct {
	Key         string
	IndexOffset uint64
	IndexLength uint64
	EntryCount  uint64
}

// Validate checks the footer's section arithmetic against the file size.
// The directory's own length is implicit: it runs from DirectoryOffset to the
// footer.
func (f Footer) Validate(size int64) error {
	if size < MinFileSize {
		return ErrTruncated
	}
	footerOffset := uint64(size) - FooterSize

	if f.Version != Version {
		return ErrInvalidVersion
	}
	if f.DataOffset != HeaderSize {
		return ErrCorrupted
	}
	if f.DataOffset+f.DataLength != f.IndexSegmentOffset {
		return ErrCorrupted
	}
	if f.IndexSegmentOffset > f.DirectoryOffset {
		return ErrCorrupted
	}
	if f.DirectoryOffset > footerOffset {
		return ErrCorrupted
	}
	return nil
}

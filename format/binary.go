package format

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// AppendHeader appends the 8-byte header.
func AppendHeader(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, Magic)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	return buf
}

// ReadHeader reads and validates the header at the start of the artifact.
func ReadHeader(r io.ReaderAt, size int64) (Header, error) {
	if size < MinFileSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}
	var raw [HeaderSize]byte
	if _, err := r.ReadAt(raw[:], 0); err != nil {
		return Header{}, err
	}
	h := Header{
		Magic:   binary.LittleEndian.Uint32(raw[0:]),
		Version: binary.LittleEndian.Uint32(raw[4:]),
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	return h, nil
}

// AppendFooter appends the 48-byte footer.
func AppendFooter(buf []byte, f Footer) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, f.DataOffset)
	buf = binary.LittleEndian.AppendUint64(buf, f.DataLength)
	buf = binary.LittleEndian.AppendUint64(buf, f.IndexSegmentOffset)
	buf = binary.LittleEndian.AppendUint64(buf, f.DirectoryOffset)
	buf = binary.LittleEndian.AppendUint64(buf, f.RecordCount)
	buf = binary.LittleEndian.AppendUint64(buf, f.Version)
	return buf
}

// ReadFooter reads and validates the footer at the end of the artifact.
func ReadFooter(r io.ReaderAt, size int64) (Footer, error) {
	if size < MinFileSize {
		return Footer{}, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}
	var raw [FooterSize]byte
	if _, err := r.ReadAt(raw[:], size-FooterSize); err != nil {
		return Footer{}, err
	}
	f := Footer{
		DataOffset:         binary.LittleEndian.Uint64(raw[0:]),
		DataLength:         binary.LittleEndian.Uint64(raw[8:]),
		IndexSegmentOffset: binary.LittleEndian.Uint64(raw[16:]),
		DirectoryOffset:    binary.LittleEndian.Uint64(raw[24:]),
		RecordCount:        binary.LittleEndian.Uint64(raw[32:]),
		Version:            binary.LittleEndian.Uint64(raw[40:]),
	}
	if err := f.Validate(size); err != nil {
		return Footer{}, err
	}
	return f, nil
}

// AppendDirectoryEntry appends one directory entry: uvarint key length, key
// bytes, then index offset, index length and entry count.
func AppendDirectoryEntry(buf []byte, e DirectoryEntry) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(e.Key)))
	buf = append(buf, e.Key...)
	buf = binary.LittleEndian.AppendUint64(buf, e.IndexOffset)
	buf = binary.LittleEndian.AppendUint64(buf, e.IndexLength)
	buf = binary.LittleEndian.AppendUint64(buf, e.EntryCount)
	return buf
}

// ParseDirectory parses the directory section. It must consume data exactly,
// and entries must arrive in strictly ascending key order with runs that stay
// inside an index segment of indexLen bytes.
func ParseDirectory(data []byte, indexLen uint64) ([]DirectoryEntry, error) {
	var entries []DirectoryEntry
	for len(data) > 0 {
		kLen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("%w: invalid directory key length", ErrCorrupted)
		}
		data = data[n:]
		if uint64(len(data)) < kLen+24 {
			return nil, fmt.Errorf("%w: short directory entry", ErrTruncated)
		}
		e := DirectoryEntry{
			Key:         string(data[:kLen]),
			IndexOffset: binary.LittleEndian.Uint64(data[kLen:]),
			IndexLength: binary.LittleEndian.Uint64(data[kLen+8:]),
			EntryCount:  binary.LittleEndian.Uint64(data[kLen+16:]),
		}
		data = data[kLen+24:]

		if e.IndexOffset > indexLen || e.IndexLength > indexLen-e.IndexOffset {
			return nil, fmt.Errorf("%w: directory run out of bounds for %q", ErrCorrupted, e.Key)
		}
		if len(entries) > 0 && entries[len(entries)-1].Key >= e.Key {
			return nil, fmt.Errorf("%w: directory keys out of order at %q", ErrCorrupted, e.Key)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FindDirectoryEntry binary-searches entries (ascending key order) for key.
func FindDirectoryEntry(entries []DirectoryEntry, key string) (DirectoryEntry, bool) {
	i := sort.Search(len(entries), func(i int) bool { return entries[i].Key >= key })
	if i < len(entries) && entries[i].Key == key {
		return entries[i], true
	}
	return DirectoryEntry{}, false
}

// SaveToFile writes an artifact through writeFunc into path atomically: the
// bytes go to a temp file in the same directory, are synced, and only then
// renamed over the target. A failed build never leaves a partial artifact.
func SaveToFile(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// Temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// Package file reads and writes the on-disk sheet format. A file is a
// fixed-size header block carrying the format version, followed by a
// version-specific body. Only source strings are persisted; values are
// recomputed on load.
package file

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"tally/cell"
)

// HeaderSize is the size of the header block. The header currently carries
// only the version number; the rest is zero padding reserved for future
// fields.
const HeaderSize = 1024

// VersionV1 marks bodies that are a gob-encoded map from address to source
// string.
const VersionV1 uint64 = 1

// ErrMalformedHeader reports a file too short to contain a header block.
var ErrMalformedHeader = errors.New("sheet file header is malformed")

// UnsupportedVersionError reports a well-formed header whose version this
// implementation cannot read.
type UnsupportedVersionError struct {
	Version uint64
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("sheet file version %d is not supported", e.Version)
}

// Save writes the source table to path: the header block with the current
// version, then the gob-encoded table. The version is stored little-endian
// so files travel between hosts.
func Save(path string, sources map[cell.Address]string) error {
	var buf bytes.Buffer

	var header [HeaderSize]byte
	binary.LittleEndian.PutUint64(header[:8], VersionV1)
	buf.Write(header[:])

	if err := gob.NewEncoder(&buf).Encode(sources); err != nil {
		return fmt.Errorf("encoding sheet body: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing sheet file: %w", err)
	}
	return nil
}

// Load reads a source table from path. An empty file is an empty table; a
// file shorter than the header block is malformed; a header with an unknown
// version is rejected.
func Load(path string) (map[cell.Address]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sheet file: %w", err)
	}
	if len(data) == 0 {
		return map[cell.Address]string{}, nil
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrMalformedHeader, len(data), HeaderSize)
	}

	version := binary.LittleEndian.Uint64(data[:8])
	switch version {
	case VersionV1:
		return loadV1(data[HeaderSize:])
	default:
		return nil, &UnsupportedVersionError{Version: version}
	}
}

func loadV1(body []byte) (map[cell.Address]string, error) {
	var sources map[cell.Address]string
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&sources); err != nil {
		return nil, fmt.Errorf("decoding sheet body: %w", err)
	}
	if sources == nil {
		sources = map[cell.Address]string{}
	}
	return sources, nil
}

package recstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size in bytes of the store header.
const HeaderSize = 8

var (
	storeMagic   = [4]byte{'R', 'C', 'S', 'T'}
	storeVersion = uint16(1)
	storeFlags   = uint16(0)
)

// Header returns the header every store file starts with.
func Header() []byte {
	return appendHeader(make([]byte, 0, HeaderSize))
}

func appendHeader(dst []byte) []byte {
	dst = append(dst, storeMagic[:]...)
	dst = binary.LittleEndian.AppendUint16(dst, storeVersion)
	return binary.LittleEndian.AppendUint16(dst, storeFlags)
}

// readHeader consumes and validates the header at the current position of r.
func readHeader(r io.Reader) error {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return &HeaderError{Reason: "file shorter than header"}
		}
		return fmt.Errorf("failed to read store header: %w", err)
	}
	return checkHeader(hdr[:])
}

func checkHeader(hdr []byte) error {
	if !bytes.Equal(hdr[:4], storeMagic[:]) {
		return &HeaderError{Reason: fmt.Sprintf("invalid magic %q", hdr[:4])}
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != storeVersion {
		return &HeaderError{Reason: fmt.Sprintf("unsupported version %d", v)}
	}
	if f := binary.LittleEndian.Uint16(hdr[6:8]); f != storeFlags {
		return &HeaderError{Reason: fmt.Sprintf("unsupported flags 0x%04x", f)}
	}
	return nil
}

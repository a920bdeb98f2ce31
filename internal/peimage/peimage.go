// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package peimage is a trimmed PE32/PE32+ header reader, adapted from the
// saferwall/pe parser's dosheader.go/ntheader.go/file.go. It keeps only what
// the Module Loader's cross-platform fallback path needs: locating the
// optional header and reading its SizeOfImage field. It does not parse
// sections, data directories, imports, exports, resources or any of the
// other structures a general-purpose PE parser would, because nothing in
// this module's domain inspects them.
package peimage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Errors mirror the teacher's helper.go sentinel style: one exported value
// per distinct failure a caller may want to branch on.
var (
	// ErrInvalidPESize is returned when the file is smaller than the
	// smallest possible PE image.
	ErrInvalidPESize = errors.New("peimage: not a PE file, smaller than tiny PE")

	// ErrDOSMagicNotFound is returned when the MZ signature is absent.
	ErrDOSMagicNotFound = errors.New("peimage: DOS header magic not found")

	// ErrInvalidElfanewValue is returned when e_lfanew points outside the file.
	ErrInvalidElfanewValue = errors.New("peimage: invalid e_lfanew value")

	// ErrNtSignatureNotFound is returned when the PE00 signature is absent.
	ErrNtSignatureNotFound = errors.New("peimage: PE signature not found")

	// ErrOptionalHeaderMagicNotFound is returned when the optional header
	// magic is neither PE32 nor PE32+.
	ErrOptionalHeaderMagicNotFound = errors.New("peimage: optional header magic not found")

	// ErrOutsideBoundary is returned when a read would cross the end of the
	// mapped file.
	ErrOutsideBoundary = errors.New("peimage: read outside file boundary")
)

// Tiny PE size observed on 32-bit Windows XP; anything smaller cannot hold
// a DOS header plus an NT header.
const tinyPESize = 97

const (
	imageDOSSignature         = 0x5A4D // MZ
	imageNTSignature          = 0x00004550
	imageNtOptionalHdr32Magic = 0x10b
	imageNtOptionalHdr64Magic = 0x20b
)

// imageDOSHeader is the subset of IMAGE_DOS_HEADER this package reads: just
// the magic and the offset to the NT headers.
type imageDOSHeader struct {
	Magic                 uint16
	_                     [29]uint16 // unused DOS stub fields
	AddressOfNewEXEHeader uint32
}

// imageFileHeader is IMAGE_FILE_HEADER.
type imageFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// File is a memory-mapped, read-only view of a PE image on disk.
type File struct {
	data mmap.MMap
	f    *os.File
	size uint32

	// SizeOfImage is the only optional-header field this package surfaces:
	// the loader's notion of how many bytes the image occupies once mapped,
	// as opposed to len(data) (the on-disk file size).
	SizeOfImage uint32
}

// Open memory-maps path read-only and parses just enough of its PE headers
// to expose SizeOfImage.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	pe := &File{data: data, f: f, size: uint32(len(data))}
	if err := pe.parse(); err != nil {
		pe.Close()
		return nil, err
	}
	return pe, nil
}

// Close unmaps the file.
func (pe *File) Close() error {
	if pe.data != nil {
		_ = pe.data.Unmap()
	}
	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

func (pe *File) structUnpack(iface interface{}, offset, size uint32) error {
	total := offset + size
	if (total > offset) != (size > 0) {
		return ErrOutsideBoundary
	}
	if offset >= pe.size || total > pe.size {
		return ErrOutsideBoundary
	}

	r := bytes.NewReader(pe.data[offset:total])
	return binary.Read(r, binary.LittleEndian, iface)
}

func (pe *File) readUint16(offset uint32) (uint16, error) {
	if offset+2 > pe.size {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(pe.data[offset : offset+2]), nil
}

func (pe *File) parse() error {
	if pe.size < tinyPESize {
		return ErrInvalidPESize
	}

	var dos imageDOSHeader
	if err := pe.structUnpack(&dos, 0, uint32(binary.Size(dos))); err != nil {
		return err
	}
	if dos.Magic != imageDOSSignature {
		return ErrDOSMagicNotFound
	}
	if dos.AddressOfNewEXEHeader == 0 || dos.AddressOfNewEXEHeader > pe.size {
		return ErrInvalidElfanewValue
	}

	ntOffset := dos.AddressOfNewEXEHeader
	signature, err := pe.readUint32(ntOffset)
	if err != nil {
		return err
	}
	if signature != imageNTSignature {
		return ErrNtSignatureNotFound
	}

	var fh imageFileHeader
	fhOffset := ntOffset + 4
	fhSize := uint32(binary.Size(fh))
	if err := pe.structUnpack(&fh, fhOffset, fhSize); err != nil {
		return err
	}

	optOffset := fhOffset + fhSize
	magic, err := pe.readUint16(optOffset)
	if err != nil {
		return err
	}

	switch magic {
	case imageNtOptionalHdr32Magic:
		size, err := pe.readUint32(optOffset + sizeOfImageOffset32)
		if err != nil {
			return err
		}
		pe.SizeOfImage = size
	case imageNtOptionalHdr64Magic:
		size, err := pe.readUint32(optOffset + sizeOfImageOffset64)
		if err != nil {
			return err
		}
		pe.SizeOfImage = size
	default:
		return ErrOptionalHeaderMagicNotFound
	}

	return nil
}

func (pe *File) readUint32(offset uint32) (uint32, error) {
	if offset+4 > pe.size {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(pe.data[offset : offset+4]), nil
}

// Byte offsets of SizeOfImage within IMAGE_OPTIONAL_HEADER32/64,
// measured from the start of the optional header (Magic field included).
// Both layouts place Magic/MajorLinkerVersion/MinorLinkerVersion/SizeOfCode/
// SizeOfInitializedData/SizeOfUninitializedData/AddressOfEntryPoint/
// BaseOfCode identically; PE32 additionally has BaseOfData before ImageBase.
const (
	sizeOfImageOffset32 = 0x38
	sizeOfImageOffset64 = 0x38
)

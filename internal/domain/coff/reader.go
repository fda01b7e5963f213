// Package coff extracts target machine types from PE/COFF binaries and
// COFF archives. It reads only the headers the validation engine needs; it
// is not a general-purpose binary parser.
package coff

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MachineType is the raw machine-type code from a COFF or import-object
// header.
type MachineType uint16

const (
	MachineUnknown MachineType = 0x0
	MachineI386    MachineType = 0x14c
	MachineIA64    MachineType = 0x200
	MachineAMD64   MachineType = 0x8664
	MachineARM     MachineType = 0x1c0
	MachineARMNT   MachineType = 0x1c4
	MachineARM64   MachineType = 0xaa64
)

// Architecture maps the machine code onto the architecture names recipes
// declare. Unrecognized codes are carried verbatim into the result so they
// surface in diagnostics instead of being dropped.
func (m MachineType) Architecture() string {
	switch m {
	case MachineAMD64, MachineIA64:
		return "x64"
	case MachineI386:
		return "x86"
	case MachineARM, MachineARMNT:
		return "arm"
	case MachineARM64:
		return "arm64"
	default:
		return fmt.Sprintf("Machine Type Code = %d", uint16(m))
	}
}

// FormatError reports that a file is not the binary container its extension
// claims. Callers must treat this as a fault, not as "no architecture".
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

const (
	dosMagic     = "MZ"
	peMagic      = "PE\x00\x00"
	archiveMagic = "!<arch>\n"

	peOffsetField    = 0x3c
	memberHeaderSize = 60
	importSig2       = 0xffff
)

// ReadDLLMachine returns the machine type of a PE image. The file must start
// with a DOS header pointing at a valid PE signature.
func ReadDLLMachine(path string) (MachineType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MachineUnknown, err
	}
	if len(data) < peOffsetField+4 || string(data[:2]) != dosMagic {
		return MachineUnknown, &FormatError{Path: path, Reason: "missing DOS header"}
	}
	peOffset := int(binary.LittleEndian.Uint32(data[peOffsetField:]))
	if peOffset < 0 || peOffset+6 > len(data) || string(data[peOffset:peOffset+4]) != peMagic {
		return MachineUnknown, &FormatError{Path: path, Reason: "missing PE signature"}
	}
	return MachineType(binary.LittleEndian.Uint16(data[peOffset+4:])), nil
}

// ReadArchiveMachines returns the distinct machine types found across the
// members of a COFF archive (.lib), in member order. Linker and long-name
// members are skipped, as are members with an unknown machine type, so an
// architecture-less archive legitimately yields an empty set.
func ReadArchiveMachines(path string) ([]MachineType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < len(archiveMagic) || string(data[:len(archiveMagic)]) != archiveMagic {
		return nil, &FormatError{Path: path, Reason: "missing archive signature"}
	}

	var machines []MachineType
	seen := make(map[MachineType]bool)

	offset := len(archiveMagic)
	for offset+memberHeaderSize <= len(data) {
		header := data[offset : offset+memberHeaderSize]
		if header[58] != '`' || header[59] != '\n' {
			return nil, &FormatError{Path: path, Reason: "corrupt archive member header"}
		}
		name := strings.TrimRight(string(header[:16]), " ")
		size, err := strconv.Atoi(strings.TrimSpace(string(header[48:58])))
		if err != nil || size < 0 {
			return nil, &FormatError{Path: path, Reason: "corrupt archive member size"}
		}
		body := offset + memberHeaderSize
		if body+size > len(data) {
			return nil, &FormatError{Path: path, Reason: "truncated archive member"}
		}

		// "/" names the linker members, "//" the long-name table.
		if name != "/" && name != "//" {
			m := memberMachine(data[body : body+size])
			if m != MachineUnknown && !seen[m] {
				seen[m] = true
				machines = append(machines, m)
			}
		}

		offset = body + size + size%2 // members are 2-byte aligned
	}

	return machines, nil
}

// memberMachine reads the machine field of an archive member: import-object
// headers (sig1 0x0000, sig2 0xffff) carry it at offset 6, plain COFF
// objects at offset 0.
func memberMachine(body []byte) MachineType {
	if len(body) < 8 {
		return MachineUnknown
	}
	sig1 := binary.LittleEndian.Uint16(body[0:])
	sig2 := binary.LittleEndian.Uint16(body[2:])
	if sig1 == uint16(MachineUnknown) && sig2 == importSig2 {
		return MachineType(binary.LittleEndian.Uint16(body[6:]))
	}
	return MachineType(sig1)
}

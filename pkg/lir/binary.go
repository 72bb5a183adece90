package lir

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
)

// LUMENBIN is the 8-byte magic identifier every binary file begins with,
// used to distinguish real binaries from corrupted/foreign files before any
// gob decoding is attempted.
var LUMENBIN = [8]byte{'l', 'u', 'm', 'e', 'n', 'b', 'i', 'n'}

// BinfileMajorVersion must match exactly for a file to load; a file's minor
// version must be less than or equal to BinfileMinorVersion, so files written
// with a newer minor version are rejected (§6.5).
const (
	BinfileMajorVersion uint16 = 1
	BinfileMinorVersion uint16 = 0
)

// Header is the fixed-layout prefix of every LIR binary, encoded by hand
// (not gob) so the magic and version fields can be read without decoding
// the rest of the file.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
	MetaData     []byte
}

// IsCompatible reports whether this header can be loaded by the current
// implementation: exact magic and major version, minor version no greater
// than what this implementation knows about.
func (h *Header) IsCompatible() bool {
	return h.Identifier == LUMENBIN &&
		h.MajorVersion == BinfileMajorVersion &&
		h.MinorVersion <= BinfileMinorVersion
}

// MarshalBinary writes the header as 8 magic bytes, two little-endian
// uint16 version fields, a little-endian uint32 metadata length, then the
// metadata bytes themselves (§6.5: "all integers little-endian").
func (h *Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Write(h.Identifier[:])

	var versions [4]byte
	binary.LittleEndian.PutUint16(versions[0:2], h.MajorVersion)
	binary.LittleEndian.PutUint16(versions[2:4], h.MinorVersion)
	buf.Write(versions[:])

	var metaLen [4]byte
	binary.LittleEndian.PutUint32(metaLen[:], uint32(len(h.MetaData)))
	buf.Write(metaLen[:])
	buf.Write(h.MetaData)

	return buf.Bytes(), nil
}

// UnmarshalBinary reads a header in the exact layout MarshalBinary writes.
func (h *Header) UnmarshalBinary(buf *bytes.Buffer) error {
	if n, err := buf.Read(h.Identifier[:]); err != nil || n != 8 {
		return errors.New("lir: malformed binary file header")
	}

	var versions [4]byte
	if n, err := buf.Read(versions[:]); err != nil || n != 4 {
		return errors.New("lir: malformed binary file header")
	}

	h.MajorVersion = binary.LittleEndian.Uint16(versions[0:2])
	h.MinorVersion = binary.LittleEndian.Uint16(versions[2:4])

	var metaLenBytes [4]byte
	if n, err := buf.Read(metaLenBytes[:]); err != nil || n != 4 {
		return errors.New("lir: malformed binary file header")
	}

	metaLen := binary.LittleEndian.Uint32(metaLenBytes[:])
	meta := make([]byte, metaLen)

	if metaLen > 0 {
		if n, err := buf.Read(meta); err != nil || uint32(n) != metaLen {
			return errors.New("lir: malformed binary file header")
		}
	}

	h.MetaData = meta

	return nil
}

// ErrIncompatibleVersion is returned by Load when a binary's header fails
// IsCompatible.
type ErrIncompatibleVersion struct {
	Got  Header
	Want Header
}

func (e *ErrIncompatibleVersion) Error() string {
	return fmt.Sprintf("lir: incompatible binary file was v%d.%d, expected v%d.%d",
		e.Got.MajorVersion, e.Got.MinorVersion, e.Want.MajorVersion, e.Want.MinorVersion)
}

// wireInstruction is the gob-friendly packed form of an Instruction: a
// single 32-bit word, rather than the decoded struct, so the on-disk
// encoding is stable across changes to Instruction's Go field layout.
type wireInstruction struct {
	Word uint32
}

// wireCell mirrors LirCell but carries packed instructions.
type wireCell struct {
	Name      string
	Params    []LirParam
	Returns   string
	Registers int
	Effects   []string
	Linear    bool
	Constants []Constant
	Instrs    []wireInstruction
}

// wireHandler mirrors LirHandler but carries packed instructions.
type wireHandler struct {
	Name      string
	Effect    string
	Registers int
	Constants []Constant
	Instrs    []wireInstruction
}

// wireModule is the gob-encoded payload following the Header.
type wireModule struct {
	Version    string
	DocHash    string
	Strings    []string
	FieldNames []string
	Types      []LirType
	Cells    []wireCell
	Tools    []LirTool
	Policies []LirPolicy
	Machines []LirMachine
	Handlers []wireHandler
	ToolSite []ToolCallSite
}

func toWire(m *LirModule) wireModule {
	w := wireModule{
		Version: m.Version, DocHash: m.DocHash, Strings: m.Strings, FieldNames: m.FieldNames,
		Types: m.Types, Tools: m.Tools, Policies: m.Policies, Machines: m.Machines,
		ToolSite: m.ToolSite,
	}

	for _, c := range m.Cells {
		w.Cells = append(w.Cells, wireCell{
			Name: c.Name, Params: c.Params, Returns: c.Returns, Registers: c.Registers,
			Effects: c.Effects, Linear: c.Linear, Constants: c.Constants,
			Instrs: packInstrs(c.Instrs),
		})
	}

	for _, h := range m.Handlers {
		w.Handlers = append(w.Handlers, wireHandler{
			Name: h.Name, Effect: h.Effect, Registers: h.Registers,
			Constants: h.Constants, Instrs: packInstrs(h.Instrs),
		})
	}

	return w
}

func fromWire(w wireModule) *LirModule {
	m := &LirModule{
		Version: w.Version, DocHash: w.DocHash, Strings: w.Strings, FieldNames: w.FieldNames,
		Types: w.Types, Tools: w.Tools, Policies: w.Policies, Machines: w.Machines,
		ToolSite: w.ToolSite,
	}

	for _, c := range w.Cells {
		m.Cells = append(m.Cells, LirCell{
			Name: c.Name, Params: c.Params, Returns: c.Returns, Registers: c.Registers,
			Effects: c.Effects, Linear: c.Linear, Constants: c.Constants,
			Instrs: unpackInstrs(c.Instrs),
		})
	}

	for _, h := range w.Handlers {
		m.Handlers = append(m.Handlers, LirHandler{
			Name: h.Name, Effect: h.Effect, Registers: h.Registers,
			Constants: h.Constants, Instrs: unpackInstrs(h.Instrs),
		})
	}

	return m
}

func packInstrs(instrs []Instruction) []wireInstruction {
	out := make([]wireInstruction, len(instrs))
	for i, ins := range instrs {
		out[i] = wireInstruction{Word: ins.packed32()}
	}

	return out
}

func unpackInstrs(wire []wireInstruction) []Instruction {
	out := make([]Instruction, len(wire))
	for i, w := range wire {
		out[i] = fromPacked32(w.Word)
	}

	return out
}

// MarshalBinary encodes m as a versioned Header followed by a gob-encoded
// wireModule. Only the hand-written header uses little-endian integers; the
// module body is in gob's own encoding, not a little-endian layout.
func (m *LirModule) MarshalBinary() ([]byte, error) {
	header := Header{Identifier: LUMENBIN, MajorVersion: BinfileMajorVersion, MinorVersion: BinfileMinorVersion}

	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(headerBytes)

	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(toWire(m)); err != nil {
		return nil, fmt.Errorf("lir: encoding module: %w", err)
	}

	return buf.Bytes(), nil
}

// UnmarshalModule decodes a LirModule from the exact layout MarshalBinary
// produces, returning *ErrIncompatibleVersion if the header's version is
// not loadable.
func UnmarshalModule(data []byte) (*LirModule, error) {
	buf := bytes.NewBuffer(data)

	var header Header
	if err := header.UnmarshalBinary(buf); err != nil {
		return nil, err
	}

	if !header.IsCompatible() {
		want := Header{MajorVersion: BinfileMajorVersion, MinorVersion: BinfileMinorVersion}
		return nil, &ErrIncompatibleVersion{Got: header, Want: want}
	}

	var w wireModule

	dec := gob.NewDecoder(buf)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("lir: decoding module: %w", err)
	}

	return fromWire(w), nil
}

// IsBinaryFile reports whether data begins with the "lumenbin" magic.
func IsBinaryFile(data []byte) bool {
	if len(data) < 8 {
		return false
	}

	var got [8]byte
	copy(got[:], data[:8])

	return got == LUMENBIN
}

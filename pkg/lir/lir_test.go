package lir

import "testing"

func TestInstructionABCRoundTrip(t *testing.T) {
	in := ABC(OpAdd, 3, 1, 2)
	out := fromPacked32(in.packed32())

	if out.Op != OpAdd || out.A != 3 || out.B != 1 || out.C != 2 {
		t.Fatalf("roundtrip mismatch: got %+v", out)
	}
}

func TestInstructionABxRoundTrip(t *testing.T) {
	in := ABx(OpLoadK, 5, 1000)
	out := fromPacked32(in.packed32())

	if out.Op != OpLoadK || out.A != 5 || out.Bx != 1000 {
		t.Fatalf("roundtrip mismatch: got %+v", out)
	}
}

func TestInstructionSAxRoundTripPositive(t *testing.T) {
	in := SAx(OpJmp, 12345)
	out := fromPacked32(in.packed32())

	if out.Op != OpJmp || out.Ax != 12345 {
		t.Fatalf("roundtrip mismatch: got %+v", out)
	}
}

func TestInstructionSAxRoundTripNegative(t *testing.T) {
	in := SAx(OpJmp, -9)
	out := fromPacked32(in.packed32())

	if out.Op != OpJmp || out.Ax != -9 {
		t.Fatalf("roundtrip mismatch: got %+v", out)
	}
}

func TestInstructionAsBxSignedRoundTrip(t *testing.T) {
	in := AsBx(OpForLoop, 2, -100)
	if in.SBx() != -100 {
		t.Fatalf("SBx() = %d, want -100", in.SBx())
	}
}

func TestModuleBinaryRoundTrip(t *testing.T) {
	m := NewModule("sha256:deadbeef")
	m.Strings = []string{"Box", "n"}
	m.Types = []LirType{{Kind: "record", Name: "Box", Fields: []LirField{{Name: "n", Type: "Int"}}}}
	m.Cells = []LirCell{
		{
			Name:      "main",
			Params:    []LirParam{{Name: "x", Type: "Int", Register: 0}},
			Returns:   "Int",
			Registers: 2,
			Constants: []Constant{{Kind: ConstInt, IntVal: 42}},
			Instrs: []Instruction{
				ABx(OpLoadK, 1, 0),
				ABC(OpAdd, 1, 0, 1),
				ABC(OpReturn, 1, 1, 0),
			},
		},
	}

	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if !IsBinaryFile(data) {
		t.Fatal("IsBinaryFile = false on just-marshalled data")
	}

	got, err := UnmarshalModule(data)
	if err != nil {
		t.Fatalf("UnmarshalModule: %v", err)
	}

	if got.DocHash != m.DocHash {
		t.Fatalf("DocHash = %q, want %q", got.DocHash, m.DocHash)
	}

	if len(got.Cells) != 1 || got.Cells[0].Name != "main" {
		t.Fatalf("cells = %+v", got.Cells)
	}

	gotInstrs := got.Cells[0].Instrs
	if len(gotInstrs) != 3 || gotInstrs[0].Op != OpLoadK || gotInstrs[1].Op != OpAdd || gotInstrs[2].Op != OpReturn {
		t.Fatalf("instrs = %+v", gotInstrs)
	}

	if gotInstrs[0].Bx != 0 || gotInstrs[0].A != 1 {
		t.Fatalf("LoadK operands mismatch: %+v", gotInstrs[0])
	}
}

func TestUnmarshalRejectsIncompatibleMajorVersion(t *testing.T) {
	m := NewModule("sha256:x")
	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	// Corrupt the major version byte (little-endian low byte at offset 8).
	data[8] = 99

	_, err = UnmarshalModule(data)
	if err == nil {
		t.Fatal("expected an incompatible-version error")
	}

	var verErr *ErrIncompatibleVersion
	if e, ok := err.(*ErrIncompatibleVersion); ok {
		verErr = e
	}

	if verErr == nil {
		t.Fatalf("expected *ErrIncompatibleVersion, got %T: %v", err, err)
	}
}

func TestIsBinaryFileRejectsForeignData(t *testing.T) {
	if IsBinaryFile([]byte("not a lumen binary")) {
		t.Fatal("IsBinaryFile = true on non-lumen data")
	}

	if IsBinaryFile([]byte("short")) {
		t.Fatal("IsBinaryFile = true on too-short data")
	}
}

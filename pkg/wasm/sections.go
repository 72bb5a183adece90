package wasm

// Section ids (§5.5 of the core spec's binary format).
const (
	secType     byte = 1
	secFunction byte = 3
	secMemory   byte = 5
	secExport   byte = 7
	secCode     byte = 10
)

const (
	exportKindFunc   byte = 0x00
	exportKindMemory byte = 0x02
)

func appendSection(mod []byte, id byte, payload []byte) []byte {
	mod = append(mod, id)
	mod = appendULEB128(mod, uint64(len(payload)))
	mod = append(mod, payload...)
	return mod
}

// cellSig is the subset of a cell's signature the type section cares about:
// every parameter and return value is represented as i64 (§"all values as
// i64" per the expanded wasm target scope), so only arity and return
// presence distinguish one signature from another.
type cellSig struct {
	paramCount int
	hasReturn  bool
}

func dedupeSigs(sigs []cellSig) []cellSig {
	var unique []cellSig
	for _, s := range sigs {
		found := false
		for _, u := range unique {
			if u == s {
				found = true
				break
			}
		}
		if !found {
			unique = append(unique, s)
		}
	}
	return unique
}

func buildTypeSection(unique []cellSig) []byte {
	var payload []byte
	payload = appendULEB128(payload, uint64(len(unique)))
	for _, s := range unique {
		payload = append(payload, 0x60) // functype tag
		payload = appendULEB128(payload, uint64(s.paramCount))
		for i := 0; i < s.paramCount; i++ {
			payload = append(payload, valTypeI64)
		}
		if s.hasReturn {
			payload = appendULEB128(payload, 1)
			payload = append(payload, valTypeI64)
		} else {
			payload = appendULEB128(payload, 0)
		}
	}
	return payload
}

func buildFunctionSection(sigs, unique []cellSig) []byte {
	var payload []byte
	payload = appendULEB128(payload, uint64(len(sigs)))
	for _, s := range sigs {
		idx := 0
		for i, u := range unique {
			if u == s {
				idx = i
				break
			}
		}
		payload = appendULEB128(payload, uint64(idx))
	}
	return payload
}

func buildMemorySection() []byte {
	var payload []byte
	payload = appendULEB128(payload, 1) // one memory
	payload = append(payload, 0x00)     // limits: min only
	payload = appendULEB128(payload, 1) // 1 page (64KiB)
	return payload
}

func buildExportSection(names []string) []byte {
	var payload []byte
	payload = appendULEB128(payload, uint64(len(names)+1))
	for i, name := range names {
		payload = appendULEB128(payload, uint64(len(name)))
		payload = append(payload, name...)
		payload = append(payload, exportKindFunc)
		payload = appendULEB128(payload, uint64(i))
	}
	payload = appendULEB128(payload, uint64(len("memory")))
	payload = append(payload, "memory"...)
	payload = append(payload, exportKindMemory)
	payload = appendULEB128(payload, 0)
	return payload
}

func buildCodeSection(bodies [][]byte) []byte {
	var payload []byte
	payload = appendULEB128(payload, uint64(len(bodies)))
	for _, b := range bodies {
		payload = appendULEB128(payload, uint64(len(b)))
		payload = append(payload, b...)
	}
	return payload
}

// encodeLocals packs one contiguous run of same-typed locals the way the
// locals vector in a function body requires: (count, valtype) pairs.
func encodeLocals(groups [][2]uint32) []byte {
	var out []byte
	out = appendULEB128(out, uint64(len(groups)))
	for _, g := range groups {
		out = appendULEB128(out, uint64(g[0]))
		out = append(out, byte(g[1]))
	}
	return out
}

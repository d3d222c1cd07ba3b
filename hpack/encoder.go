package hpack

// Encoder turns a sequence of header fields into one HPACK-coded header
// block, maintaining the sender-side dynamic table across calls.
type Encoder struct {
	table *dynamicTable

	configuredMax int // capacity requested via SetMaxTableSize
	lastSignaled  int // capacity value as of the last emitted block
}

// NewEncoder returns an Encoder with maxSize as the initial dynamic table
// capacity (the value negotiated via SETTINGS_HEADER_TABLE_SIZE).
func NewEncoder(maxSize int) *Encoder {
	return &Encoder{table: newDynamicTable(maxSize), configuredMax: maxSize, lastSignaled: maxSize}
}

// SetMaxTableSize changes the capacity this encoder is willing to use. A
// decrease is signaled to the peer as a dynamic-table-size-update at the
// start of the next encoded block; an increase (never beyond what the
// peer's own SETTINGS allows, which is the caller's responsibility to
// enforce) is applied without a wire signal.
func (e *Encoder) SetMaxTableSize(n int) {
	e.configuredMax = n
}

// EncodeHeaderBlock appends the HPACK encoding of fields, in order, to
// dst and returns the extended slice.
func (e *Encoder) EncodeHeaderBlock(dst []byte, fields []HeaderField) []byte {
	if e.configuredMax < e.lastSignaled {
		dst = appendInteger(dst, uint64(e.configuredMax), 5, 0x20)
		e.table.setMaxSize(e.configuredMax)
		e.lastSignaled = e.configuredMax
	} else if e.configuredMax != e.lastSignaled {
		e.table.setMaxSize(e.configuredMax)
		e.lastSignaled = e.configuredMax
	}

	for _, f := range fields {
		dst = e.encodeField(dst, f)
	}
	return dst
}

func (e *Encoder) encodeField(dst []byte, f HeaderField) []byte {
	plain := HeaderField{Name: f.Name, Value: f.Value}

	if idx, ok := staticFullIndex[plain]; ok {
		return appendInteger(dst, uint64(idx), 7, 0x80)
	}
	if pos, ok := e.table.findFull(plain); ok {
		return appendInteger(dst, uint64(staticTableSize+pos+1), 7, 0x80)
	}

	if f.Sensitive {
		return e.encodeLiteral(dst, f, 0x10, 4, false)
	}

	return e.encodeLiteral(dst, f, 0x40, 6, true)
}

// encodeLiteral emits a literal representation (incremental-indexing or
// never-indexed, selected by prefix/nbits/index) using an indexed name
// when one is available.
func (e *Encoder) encodeLiteral(dst []byte, f HeaderField, prefix byte, nbits int, index bool) []byte {
	nameIdx, haveNameIdx := staticNameIndex[f.Name]
	if !haveNameIdx {
		if pos, ok := e.table.findName(f.Name); ok {
			nameIdx = staticTableSize + pos + 1
			haveNameIdx = true
		}
	}

	if haveNameIdx {
		dst = appendInteger(dst, uint64(nameIdx), nbits, prefix)
	} else {
		dst = appendInteger(dst, 0, nbits, prefix)
		dst = appendString(dst, f.Name)
	}
	dst = appendString(dst, f.Value)

	if index {
		e.table.add(HeaderField{Name: f.Name, Value: f.Value})
	}
	return dst
}

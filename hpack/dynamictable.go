package hpack

// dynamicTable is the per-connection, per-direction ring of recently
// encoded/decoded header fields (RFC 7541 §2.3.2). entries[0] is always
// the most recently inserted field, matching the wire's "index 62 is the
// newest entry" convention once offset by staticTableSize.
type dynamicTable struct {
	entries []HeaderField
	size    int // sum of entries[i].Size()
	maxSize int // current negotiated capacity (SETTINGS_HEADER_TABLE_SIZE)
}

func newDynamicTable(maxSize int) *dynamicTable {
	return &dynamicTable{maxSize: maxSize}
}

// add inserts f as the newest entry, evicting the oldest entries first
// until the table fits within maxSize. A field larger than maxSize on its
// own results in an empty table, per RFC 7541 §4.4.
func (t *dynamicTable) add(f HeaderField) {
	t.entries = append([]HeaderField{f}, t.entries...)
	t.size += f.Size()
	t.evict()
}

func (t *dynamicTable) evict() {
	for t.size > t.maxSize && len(t.entries) > 0 {
		last := t.entries[len(t.entries)-1]
		t.entries = t.entries[:len(t.entries)-1]
		t.size -= last.Size()
	}
}

// setMaxSize applies a dynamic-table-size-update, evicting as needed. It
// must be called for every size update the peer signals, even one that
// raises the size back up within the bound SETTINGS negotiated earlier.
func (t *dynamicTable) setMaxSize(n int) {
	t.maxSize = n
	t.evict()
}

// at returns the dynamic-table entry for a 0-based position (0 = newest).
func (t *dynamicTable) at(i int) (HeaderField, bool) {
	if i < 0 || i >= len(t.entries) {
		return HeaderField{}, false
	}
	return t.entries[i], true
}

// findFull looks for an exact name+value match, returning its 0-based
// position (0 = newest) for the encoder to prefer over a name-only match.
func (t *dynamicTable) findFull(f HeaderField) (int, bool) {
	for i, e := range t.entries {
		if e.Name == f.Name && e.Value == f.Value {
			return i, true
		}
	}
	return 0, false
}

// findName looks for the newest entry with a matching name only.
func (t *dynamicTable) findName(name string) (int, bool) {
	for i, e := range t.entries {
		if e.Name == name {
			return i, true
		}
	}
	return 0, false
}

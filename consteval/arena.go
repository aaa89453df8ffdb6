package consteval

// arenaChunkCap is the number of symbolic values held by one arena chunk.
const arenaChunkCap = 256

// Arena is a bump allocator for the variable-length payloads of symbolic
// values: aggregate member arrays are carved out of large chunks rather than
// allocated individually.  An arena is scoped to a single verification pass
// invocation: there are no individual frees, the whole arena is released at
// once when the invocation completes.
type Arena struct {
	chunks [][]SymbolicValue
}

// NewArena creates a new, empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// allocMembers returns an uninitialized member array of length n carved out
// of the arena.
func (a *Arena) allocMembers(n int) []SymbolicValue {
	if n == 0 {
		return nil
	}

	// Oversized requests get a dedicated chunk.
	if n > arenaChunkCap {
		chunk := make([]SymbolicValue, n)
		a.chunks = append(a.chunks, chunk)
		return chunk
	}

	// Bump within the newest chunk if it has room.
	if len(a.chunks) > 0 {
		last := a.chunks[len(a.chunks)-1]
		if cap(last)-len(last) >= n {
			members := last[len(last) : len(last)+n]
			a.chunks[len(a.chunks)-1] = last[:len(last)+n]
			return members
		}
	}

	chunk := make([]SymbolicValue, n, arenaChunkCap)
	a.chunks = append(a.chunks, chunk)
	return chunk
}

// Reset releases all values allocated from the arena at once.
func (a *Arena) Reset() {
	a.chunks = nil
}

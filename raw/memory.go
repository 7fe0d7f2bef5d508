package raw

import (
	"unsafe"
)

// Memory is a single live aligned host allocation. The aligned address
// handed out to callers sits somewhere inside a larger backing array, which
// must stay referenced for as long as the address is in use - the Go runtime
// knows nothing about the raw pointer on its own.
type Memory struct {
	ptr     unsafe.Pointer
	backing []byte
	size    int
}

// Allocate returns size bytes of zeroed host memory whose starting address
// is a multiple of alignment. Alignment must be a power of two; zero is
// treated as no alignment requirement. The Go runtime has no aligned
// allocation primitive, so the backing array is padded by alignment bytes
// and the returned address is shifted up to the next boundary.
func Allocate(size int, alignment uint) *Memory {
	if size <= 0 {
		return nil
	}
	if alignment == 0 {
		alignment = 1
	}

	backing := make([]byte, size+int(alignment)+DebugMargin)

	addr := uintptr(unsafe.Pointer(&backing[0]))
	offset := AlignUp(addr, alignment) - addr

	mem := &Memory{
		ptr:     unsafe.Pointer(&backing[offset]),
		backing: backing,
		size:    size,
	}

	if DebugMargin > 0 {
		WriteMagicValue(mem.ptr, size)
	}

	return mem
}

// Ptr is the aligned starting address of the allocation.
func (m *Memory) Ptr() unsafe.Pointer {
	return m.ptr
}

// Size is the usable byte count of the allocation, excluding any debug
// margin.
func (m *Memory) Size() int {
	return m.size
}

// Bytes returns the usable region of the allocation as a slice.
func (m *Memory) Bytes() []byte {
	return unsafe.Slice((*byte)(m.ptr), m.size)
}

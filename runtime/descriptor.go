// Package runtime defines the data-layout contract between a lowered
// pipeline and the code that eventually executes it. It carries no logic of
// its own: BufferDescriptor is the bit-exact record a caller passes for each
// external buffer, and ExternArg names the symbols the backend must bind in
// scope before the loop nest runs.
package runtime

import (
	"fmt"

	"github.com/loomlang/loomc/ir"
)

// MaxRank is the highest buffer dimensionality the descriptor can describe.
// A rank-r buffer sets Extent[i] = 0 for i >= r.
const MaxRank = 4

// BufferDescriptor is the runtime view of an external buffer. Field order
// and widths are a wire contract with compiled pipelines: a 64-bit host
// pointer, a 64-bit opaque device handle, two 8-bit dirty flags, then four
// 32-bit extents, strides and mins, and a 32-bit element size.
type BufferDescriptor struct {
	Host      uint64
	Dev       uint64
	HostDirty uint8
	DevDirty  uint8
	Extent    [MaxRank]int32
	Stride    [MaxRank]int32
	Min       [MaxRank]int32
	ElemSize  int32
}

// NewBufferDescriptor builds a dense row-major descriptor for a buffer with
// the given element size and extents. Stride[0] is 1 and each further stride
// is the running product of the preceding extents.
func NewBufferDescriptor(elemSize int32, extents ...int32) (*BufferDescriptor, error) {
	if len(extents) == 0 || len(extents) > MaxRank {
		return nil, fmt.Errorf("runtime: buffer rank must be 1..%d, got %d", MaxRank, len(extents))
	}
	d := &BufferDescriptor{ElemSize: elemSize}
	stride := int32(1)
	for i, e := range extents {
		if e < 0 {
			return nil, fmt.Errorf("runtime: negative extent %d in dimension %d", e, i)
		}
		d.Extent[i] = e
		d.Stride[i] = stride
		stride *= e
	}
	return d, nil
}

// Rank is the number of leading non-zero extents.
func (d *BufferDescriptor) Rank() int {
	for i := 0; i < MaxRank; i++ {
		if d.Extent[i] == 0 {
			return i
		}
	}
	return MaxRank
}

// Elements is the total element count of the described region.
func (d *BufferDescriptor) Elements() int64 {
	n := int64(1)
	r := d.Rank()
	if r == 0 {
		return 0
	}
	for i := 0; i < r; i++ {
		n *= int64(d.Extent[i])
	}
	return n
}

// ExternArg describes one entry of the external-argument list a lowered
// pipeline expects, in declaration order. Buffer arguments stand for a
// BufferDescriptor; scalar arguments are passed by value.
type ExternArg struct {
	Name   string
	Type   ir.Type
	Rank   int  // 0 for scalars
	Buffer bool // true when the argument is a BufferDescriptor
}

// SymbolNames lists the variable names the backend must bind in scope for
// this argument before any Load or Store that mentions them: for a rank-r
// buffer b, b.min.i / b.extent.i / b.stride.i for each dimension, plus
// b.host_dirty, b.dev_dirty, b.elem_size and the opaque b.host handle. A
// scalar argument binds only its own name.
func (a ExternArg) SymbolNames() []string {
	if !a.Buffer {
		return []string{a.Name}
	}
	names := make([]string, 0, 3*a.Rank+4)
	for i := 0; i < a.Rank; i++ {
		names = append(names,
			fmt.Sprintf("%s.min.%d", a.Name, i),
			fmt.Sprintf("%s.extent.%d", a.Name, i),
			fmt.Sprintf("%s.stride.%d", a.Name, i),
		)
	}
	names = append(names,
		a.Name+".host_dirty",
		a.Name+".dev_dirty",
		a.Name+".elem_size",
		a.Name+".host",
	)
	return names
}

package runtime

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomlang/loomc/ir"
)

func TestNewBufferDescriptorStrides(t *testing.T) {
	d, err := NewBufferDescriptor(4, 10, 20, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Rank())
	assert.Equal(t, int64(600), d.Elements())
	assert.Equal(t, [MaxRank]int32{10, 20, 3, 0}, d.Extent)
	assert.Equal(t, [MaxRank]int32{1, 10, 200, 0}, d.Stride)
	assert.Equal(t, int32(4), d.ElemSize)
}

func TestNewBufferDescriptorRejectsBadRank(t *testing.T) {
	_, err := NewBufferDescriptor(4)
	assert.Error(t, err)
	_, err = NewBufferDescriptor(4, 1, 2, 3, 4, 5)
	assert.Error(t, err)
	_, err = NewBufferDescriptor(4, 10, -1)
	assert.Error(t, err)
}

// The descriptor layout is a wire contract; pin the field offsets so a
// reordered field shows up as a test failure rather than a corrupt buffer
// at runtime.
func TestBufferDescriptorLayout(t *testing.T) {
	var d BufferDescriptor
	assert.Equal(t, uintptr(0), unsafe.Offsetof(d.Host))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(d.Dev))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(d.HostDirty))
	assert.Equal(t, uintptr(17), unsafe.Offsetof(d.DevDirty))
	assert.Equal(t, uintptr(20), unsafe.Offsetof(d.Extent))
	assert.Equal(t, uintptr(36), unsafe.Offsetof(d.Stride))
	assert.Equal(t, uintptr(52), unsafe.Offsetof(d.Min))
	assert.Equal(t, uintptr(68), unsafe.Offsetof(d.ElemSize))
}

func TestExternArgSymbolNames(t *testing.T) {
	scalar := ExternArg{Name: "f.x.min", Type: ir.Int32}
	assert.Equal(t, []string{"f.x.min"}, scalar.SymbolNames())

	buf := ExternArg{Name: "input", Type: ir.UInt32, Rank: 2, Buffer: true}
	assert.Equal(t, []string{
		"input.min.0", "input.extent.0", "input.stride.0",
		"input.min.1", "input.extent.1", "input.stride.1",
		"input.host_dirty", "input.dev_dirty", "input.elem_size",
		"input.host",
	}, buf.SymbolNames())
}

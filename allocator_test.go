package vkscope

import (
	"os"
	"testing"
	"unsafe"

	"github.com/casqade/vkscope/raw"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout))
}

func TestAllocateTracksScopeAggregates(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	ptrA, res, err := allocator.Allocate(64, 16, SystemAllocationScopeObject)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.NotNil(t, ptrA)
	require.Zero(t, uintptr(ptrA)%16)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 64}, allocator.ScopeStatistics(SystemAllocationScopeObject))

	ptrB, res, err := allocator.Allocate(128, 16, SystemAllocationScopeObject)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.NotNil(t, ptrB)
	require.Equal(t, Statistics{AllocationCount: 2, AllocationBytes: 192}, allocator.ScopeStatistics(SystemAllocationScopeObject))
	require.Equal(t, 2, allocator.TrackedBlockCount())

	allocator.Deallocate(ptrA)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 128}, allocator.ScopeStatistics(SystemAllocationScopeObject))
	require.Equal(t, 1, allocator.TrackedBlockCount())

	contentB := unsafe.Slice((*byte)(ptrB), 128)
	for i := range contentB {
		contentB[i] = byte(i)
	}

	ptrC, res, err := allocator.Reallocate(ptrB, 256, 16, SystemAllocationScopeObject)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
	require.NotNil(t, ptrC)
	require.NotEqual(t, ptrB, ptrC)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 256}, allocator.ScopeStatistics(SystemAllocationScopeObject))
	require.Equal(t, 1, allocator.TrackedBlockCount())

	contentC := unsafe.Slice((*byte)(ptrC), 256)
	for i := 0; i < 128; i++ {
		require.Equal(t, byte(i), contentC[i])
	}

	// The old address is no longer known, so freeing it changes nothing.
	allocator.Deallocate(ptrB)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 256}, allocator.ScopeStatistics(SystemAllocationScopeObject))

	require.NoError(t, allocator.Validate())

	allocator.Deallocate(ptrC)
	require.Equal(t, Statistics{}, allocator.ScopeStatistics(SystemAllocationScopeObject))
	require.Equal(t, 0, allocator.TrackedBlockCount())
}

func TestAllocateAlignments(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	for _, alignment := range []uint{1, 2, 4, 8, 16, 32, 64, 128, 256, 4096} {
		ptr, res, err := allocator.Allocate(100, alignment, SystemAllocationScopeCommand)
		require.NoError(t, err)
		require.Equal(t, core1_0.VKSuccess, res)
		require.Zerof(t, uintptr(ptr)%uintptr(alignment), "allocation was not %d-byte aligned", alignment)
	}
}

func TestAllocateRejectsBadRequests(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	ptr, _, err := allocator.Allocate(64, 3, SystemAllocationScopeObject)
	require.ErrorIs(t, err, raw.PowerOfTwoError)
	require.Nil(t, ptr)

	ptr, _, err = allocator.Allocate(0, 8, SystemAllocationScopeObject)
	require.Error(t, err)
	require.Nil(t, ptr)

	require.Equal(t, Statistics{}, allocator.TotalStatistics())
	require.Equal(t, 0, allocator.TrackedBlockCount())
}

func TestDeallocateUnknownIsNoOp(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	_, _, err = allocator.Allocate(32, 8, SystemAllocationScopeDevice)
	require.NoError(t, err)

	var local int
	allocator.Deallocate(nil)
	allocator.Deallocate(unsafe.Pointer(&local))

	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 32}, allocator.TotalStatistics())
	require.Equal(t, 1, allocator.TrackedBlockCount())
}

func TestReallocateUnknownFails(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	var local int
	ptr, res, err := allocator.Reallocate(unsafe.Pointer(&local), 64, 8, SystemAllocationScopeObject)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorUnknown, res)
	require.Nil(t, ptr)
	require.Equal(t, Statistics{}, allocator.TotalStatistics())
}

func TestReallocateAcrossScopes(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	ptr, _, err := allocator.Allocate(64, 8, SystemAllocationScopeObject)
	require.NoError(t, err)

	newPtr, _, err := allocator.Reallocate(ptr, 128, 8, SystemAllocationScopeDevice)
	require.NoError(t, err)
	require.NotNil(t, newPtr)

	require.Equal(t, Statistics{}, allocator.ScopeStatistics(SystemAllocationScopeObject))
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 128}, allocator.ScopeStatistics(SystemAllocationScopeDevice))
}

func TestHeapSizeLimit(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{HeapSizeLimit: 128})
	require.NoError(t, err)

	ptr, res, err := allocator.Allocate(96, 8, SystemAllocationScopeDevice)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	failed, res, err := allocator.Allocate(64, 8, SystemAllocationScopeDevice)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfHostMemory, res)
	require.Nil(t, failed)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 96}, allocator.TotalStatistics())

	allocator.Deallocate(ptr)

	_, res, err = allocator.Allocate(64, 8, SystemAllocationScopeDevice)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
}

func TestReallocateFailureLeavesOldBlock(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{HeapSizeLimit: 100})
	require.NoError(t, err)

	ptr, _, err := allocator.Allocate(64, 8, SystemAllocationScopeObject)
	require.NoError(t, err)

	content := unsafe.Slice((*byte)(ptr), 64)
	for i := range content {
		content[i] = byte(255 - i)
	}

	// The new block is acquired before the old one is released, so growing
	// to 96 would need 160 tracked bytes.
	failed, res, err := allocator.Reallocate(ptr, 96, 8, SystemAllocationScopeObject)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfHostMemory, res)
	require.Nil(t, failed)

	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 64}, allocator.ScopeStatistics(SystemAllocationScopeObject))
	require.Equal(t, 1, allocator.TrackedBlockCount())
	for i := range content {
		require.Equal(t, byte(255-i), content[i])
	}

	shrunk, _, err := allocator.Reallocate(ptr, 32, 8, SystemAllocationScopeObject)
	require.NoError(t, err)
	require.NotNil(t, shrunk)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 32}, allocator.ScopeStatistics(SystemAllocationScopeObject))

	shrunkContent := unsafe.Slice((*byte)(shrunk), 32)
	for i := range shrunkContent {
		require.Equal(t, byte(255-i), shrunkContent[i])
	}
}

func TestInternalAccountingRoundTrip(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	before := allocator.ScopeStatistics(SystemAllocationScopeCache)

	allocator.AllocateInternal(512, InternalAllocationTypeExecutable, SystemAllocationScopeCache)
	require.Equal(t, Statistics{AllocationCount: 1, AllocationBytes: 512}, allocator.ScopeStatistics(SystemAllocationScopeCache))
	require.Equal(t, 1, allocator.InternalAllocationCount())
	require.Equal(t, 0, allocator.TrackedBlockCount())

	allocator.DeallocateInternal(512, InternalAllocationTypeExecutable, SystemAllocationScopeCache)
	require.Equal(t, before, allocator.ScopeStatistics(SystemAllocationScopeCache))
	require.Equal(t, 0, allocator.InternalAllocationCount())

	require.NoError(t, allocator.Validate())
}

func TestDeallocateInternalUnderflowPanics(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	require.Panics(t, func() {
		allocator.DeallocateInternal(16, InternalAllocationTypeExecutable, SystemAllocationScopeCommand)
	})
}

func TestDetailedStatistics(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	_, _, err = allocator.Allocate(64, 8, SystemAllocationScopeObject)
	require.NoError(t, err)
	_, _, err = allocator.Allocate(256, 8, SystemAllocationScopeObject)
	require.NoError(t, err)
	_, _, err = allocator.Allocate(32, 8, SystemAllocationScopeDevice)
	require.NoError(t, err)

	detailed := allocator.CalculateDetailedStatistics(SystemAllocationScopeObject)
	require.Equal(t, 2, detailed.AllocationCount)
	require.Equal(t, 320, detailed.AllocationBytes)
	require.Equal(t, 64, detailed.AllocationSizeMin)
	require.Equal(t, 256, detailed.AllocationSizeMax)
}

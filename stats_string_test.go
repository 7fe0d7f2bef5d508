package vkscope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type statsStringScope struct {
	AllocationBytes   int
	AllocationCount   int
	AllocationSizeMin int
	AllocationSizeMax int
}

type statsStringDump struct {
	Total struct {
		AllocationBytes         int
		AllocationCount         int
		TrackedBlockCount       int
		InternalAllocationCount int
	}
	Scopes map[string]statsStringScope
	Blocks []struct {
		Address   string
		Size      int
		Alignment int
		Scope     string
	}
}

func TestBuildStatsString(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	_, _, err = allocator.Allocate(64, 16, SystemAllocationScopeObject)
	require.NoError(t, err)
	_, _, err = allocator.Allocate(32, 8, SystemAllocationScopeDevice)
	require.NoError(t, err)
	allocator.AllocateInternal(16, InternalAllocationTypeExecutable, SystemAllocationScopeDevice)

	var dump statsStringDump
	require.NoError(t, json.Unmarshal([]byte(allocator.BuildStatsString(true)), &dump))

	require.Equal(t, 112, dump.Total.AllocationBytes)
	require.Equal(t, 3, dump.Total.AllocationCount)
	require.Equal(t, 2, dump.Total.TrackedBlockCount)
	require.Equal(t, 1, dump.Total.InternalAllocationCount)

	require.Len(t, dump.Scopes, 2)
	require.Equal(t, statsStringScope{
		AllocationBytes:   64,
		AllocationCount:   1,
		AllocationSizeMin: 64,
		AllocationSizeMax: 64,
	}, dump.Scopes["Object"])
	require.Equal(t, statsStringScope{
		AllocationBytes:   48,
		AllocationCount:   2,
		AllocationSizeMin: 32,
		AllocationSizeMax: 32,
	}, dump.Scopes["Device"])

	require.Len(t, dump.Blocks, 2)
	for _, block := range dump.Blocks {
		require.NotEmpty(t, block.Address)
		require.NotZero(t, block.Size)
	}
}

func TestBuildStatsStringSummaryOnly(t *testing.T) {
	allocator, err := New(testLogger(), CreateOptions{})
	require.NoError(t, err)

	_, _, err = allocator.Allocate(64, 16, SystemAllocationScopeObject)
	require.NoError(t, err)

	var dump statsStringDump
	require.NoError(t, json.Unmarshal([]byte(allocator.BuildStatsString(false)), &dump))

	require.Equal(t, 64, dump.Total.AllocationBytes)
	require.Nil(t, dump.Blocks)
	require.Zero(t, dump.Scopes["Object"].AllocationSizeMax)
}

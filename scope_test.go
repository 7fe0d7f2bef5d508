package vkscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemAllocationScopeStrings(t *testing.T) {
	expected := map[SystemAllocationScope]string{
		SystemAllocationScopeCommand:  "Command",
		SystemAllocationScopeObject:   "Object",
		SystemAllocationScopeCache:    "Cache",
		SystemAllocationScopeDevice:   "Device",
		SystemAllocationScopeInstance: "Instance",
	}

	for scope, str := range expected {
		require.Equal(t, str, scope.String())
	}
}

func TestSystemAllocationScopeUnrecognizedPanics(t *testing.T) {
	require.Panics(t, func() {
		_ = SystemAllocationScope(99).String()
	})
}

func TestInternalAllocationTypeStrings(t *testing.T) {
	require.Equal(t, "Executable", InternalAllocationTypeExecutable.String())

	require.Panics(t, func() {
		_ = InternalAllocationType(-1).String()
	})
}

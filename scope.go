package vkscope

import (
	"github.com/cockroachdb/errors"
)

// SystemAllocationScope is the lifetime category Vulkan attaches to each
// host allocation request, mirroring VkSystemAllocationScope. The set is
// closed: drivers may only pass one of the five values below, and anything
// else is treated as a broken caller.
type SystemAllocationScope int32

const (
	SystemAllocationScopeCommand SystemAllocationScope = iota
	SystemAllocationScopeObject
	SystemAllocationScopeCache
	SystemAllocationScopeDevice
	SystemAllocationScopeInstance
)

// systemAllocationScopeRange is the number of valid scope values, used to
// size per-scope tables.
const systemAllocationScopeRange = int(SystemAllocationScopeInstance) + 1

func (s SystemAllocationScope) String() string {
	switch s {
	case SystemAllocationScopeCommand:
		return "Command"
	case SystemAllocationScopeObject:
		return "Object"
	case SystemAllocationScopeCache:
		return "Cache"
	case SystemAllocationScopeDevice:
		return "Device"
	case SystemAllocationScopeInstance:
		return "Instance"
	}

	panic(errors.Newf("unrecognized system allocation scope: %d", int32(s)))
}

// InternalAllocationType categorizes allocations the driver performs through
// its own mechanisms and only reports for accounting, mirroring
// VkInternalAllocationType. It is accepted for interface compatibility and
// does not affect bookkeeping.
type InternalAllocationType int32

const (
	InternalAllocationTypeExecutable InternalAllocationType = iota
)

func (t InternalAllocationType) String() string {
	switch t {
	case InternalAllocationTypeExecutable:
		return "Executable"
	}

	panic(errors.Newf("unrecognized internal allocation type: %d", int32(t)))
}

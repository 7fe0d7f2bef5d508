package vkscope

import (
	"fmt"
	"unsafe"
)

// The callback entry points below exist to satisfy Vulkan's
// VkAllocationCallbacks contract, which passes an opaque user-data value
// instead of a method-bound object. Each one downcasts the user data back to
// the *Allocator it was registered with and forwards to the matching method.
// Passing anything other than a live *Allocator is a contract violation and
// panics.

type AllocationFunction func(userData any, size int, alignment uint, allocationScope SystemAllocationScope) unsafe.Pointer

type ReallocationFunction func(userData any, original unsafe.Pointer, size int, alignment uint, allocationScope SystemAllocationScope) unsafe.Pointer

type FreeFunction func(userData any, memory unsafe.Pointer)

type InternalAllocationNotification func(userData any, size int, allocationType InternalAllocationType, allocationScope SystemAllocationScope)

type InternalFreeNotification func(userData any, size int, allocationType InternalAllocationType, allocationScope SystemAllocationScope)

// AllocationCallbacks bundles the five callback entry points together with
// the user data they expect, mirroring the layout of VkAllocationCallbacks.
type AllocationCallbacks struct {
	UserData           any
	Allocation         AllocationFunction
	Reallocation       ReallocationFunction
	Free               FreeFunction
	InternalAllocation InternalAllocationNotification
	InternalFree       InternalFreeNotification
}

// Callbacks returns an AllocationCallbacks value wired to this allocator,
// suitable for handing to whatever interop layer drives the Vulkan ICD.
func (a *Allocator) Callbacks() *AllocationCallbacks {
	return &AllocationCallbacks{
		UserData:           a,
		Allocation:         Allocate,
		Reallocation:       Reallocate,
		Free:               Free,
		InternalAllocation: InternalAllocate,
		InternalFree:       InternalFree,
	}
}

func allocatorFromUserData(userData any) *Allocator {
	allocator, ok := userData.(*Allocator)
	if !ok || allocator == nil {
		panic(fmt.Sprintf("allocation callback invoked with user data that is not a live *Allocator: %v", userData))
	}

	return allocator
}

// Allocate is the pfnAllocation entry point.
func Allocate(userData any, size int, alignment uint, allocationScope SystemAllocationScope) unsafe.Pointer {
	allocator := allocatorFromUserData(userData)

	ptr, _, _ := allocator.Allocate(size, alignment, allocationScope)
	return ptr
}

// Reallocate is the pfnReallocation entry point. Per the Vulkan contract, a
// zero size means "free the block", and a nil original address means "treat
// this as a plain allocation".
func Reallocate(userData any, original unsafe.Pointer, size int, alignment uint, allocationScope SystemAllocationScope) unsafe.Pointer {
	allocator := allocatorFromUserData(userData)

	if size == 0 {
		allocator.Deallocate(original)
		return nil
	}

	if original == nil {
		ptr, _, _ := allocator.Allocate(size, alignment, allocationScope)
		return ptr
	}

	ptr, _, _ := allocator.Reallocate(original, size, alignment, allocationScope)
	return ptr
}

// Free is the pfnFree entry point.
func Free(userData any, memory unsafe.Pointer) {
	allocator := allocatorFromUserData(userData)

	allocator.Deallocate(memory)
}

// InternalAllocate is the pfnInternalAllocation entry point.
func InternalAllocate(userData any, size int, allocationType InternalAllocationType, allocationScope SystemAllocationScope) {
	allocator := allocatorFromUserData(userData)

	allocator.AllocateInternal(size, allocationType, allocationScope)
}

// InternalFree is the pfnInternalFree entry point.
func InternalFree(userData any, size int, allocationType InternalAllocationType, allocationScope SystemAllocationScope) {
	allocator := allocatorFromUserData(userData)

	allocator.DeallocateInternal(size, allocationType, allocationScope)
}

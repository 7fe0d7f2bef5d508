package vkscope

import (
	"fmt"
	"unsafe"

	"github.com/casqade/vkscope/internal/utils"
	"github.com/casqade/vkscope/raw"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Allocator tracks host memory handed to a Vulkan driver through the
// VkAllocationCallbacks contract, broken down by allocation scope. It owns
// the table of live blocks and the per-scope aggregates; all access goes
// through its methods.
type Allocator struct {
	logger      *slog.Logger
	createFlags CreateFlags
	source      MemorySource

	heapSizeLimit int
	mutex         utils.OptionalRWMutex

	blocks *swiss.Map[uintptr, *allocatedBlock]

	// Aggregates are indexed by scope. A slot is live once touched and is
	// never cleared again, so a scope that allocated and then freed
	// everything still shows up in usage reports with zero counts.
	occupied [systemAllocationScopeRange]Statistics
	touched  [systemAllocationScopeRange]bool

	totalTrackedBytes int
}

// Allocate performs an aligned host allocation of size bytes and records it
// against the provided scope. On failure, nil is returned alongside
// VKErrorOutOfHostMemory and no bookkeeping changes are made.
func (a *Allocator) Allocate(size int, alignment uint, scope SystemAllocationScope) (unsafe.Pointer, common.VkResult, error) {
	a.mutex.Lock()
	ptr, res, err := a.allocateFromScope(size, alignment, scope)
	a.mutex.Unlock()

	raw.DebugValidate(a)
	return ptr, res, err
}

func (a *Allocator) allocateFromScope(size int, alignment uint, scope SystemAllocationScope) (unsafe.Pointer, common.VkResult, error) {
	a.logger.Debug("Allocator::Allocate",
		slog.Int("Size", size),
		slog.Int("Alignment", int(alignment)),
		slog.String("Scope", scope.String()),
	)

	if size <= 0 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("requested allocation size was %d, but it must be positive", size)
	}

	err := raw.CheckPow2(alignment, "alignment")
	if err != nil {
		return nil, core1_0.VKErrorUnknown, err
	}

	if a.heapSizeLimit > 0 && a.totalTrackedBytes+size > a.heapSizeLimit {
		a.logger.Error("failed to allocate host block: heap size limit exceeded",
			slog.Int("Size", size),
			slog.Int("TrackedBytes", a.totalTrackedBytes),
			slog.Int("HeapSizeLimit", a.heapSizeLimit),
		)
		return nil, core1_0.VKErrorOutOfHostMemory, core1_0.VKErrorOutOfHostMemory.ToError()
	}

	mem := a.source.Allocate(size, alignment)
	if mem == nil {
		a.logger.Error("failed to allocate host block",
			slog.Int("Size", size),
			slog.Int("Alignment", int(alignment)),
		)
		return nil, core1_0.VKErrorOutOfHostMemory, core1_0.VKErrorOutOfHostMemory.ToError()
	}

	key := uintptr(mem.Ptr())
	a.blocks.Put(key, &allocatedBlock{
		memory:    mem,
		size:      size,
		alignment: alignment,
		scope:     scope,
	})

	scopeAllocation := &a.occupied[scope]
	scopeAllocation.AllocationBytes += size
	scopeAllocation.AllocationCount++
	a.touched[scope] = true

	a.totalTrackedBytes += size

	return mem.Ptr(), core1_0.VKSuccess, nil
}

// Reallocate resizes a previously allocated block by allocating a new block,
// copying the overlapping bytes, and freeing the old one. When the new
// allocation fails, the old block is left fully intact and still owned by
// the caller. The alignment must match the one the block was allocated with.
func (a *Allocator) Reallocate(ptr unsafe.Pointer, newSize int, alignment uint, scope SystemAllocationScope) (unsafe.Pointer, common.VkResult, error) {
	a.mutex.Lock()
	newPtr, res, err := a.reallocateBlock(ptr, newSize, alignment, scope)
	a.mutex.Unlock()

	raw.DebugValidate(a)
	return newPtr, res, err
}

func (a *Allocator) reallocateBlock(ptr unsafe.Pointer, newSize int, alignment uint, scope SystemAllocationScope) (unsafe.Pointer, common.VkResult, error) {
	key := uintptr(ptr)

	block, ok := a.blocks.Get(key)
	if !ok {
		err := errors.Newf("attempted to reallocate unknown host block 0x%x", key)
		a.logger.Error("failed to reallocate host block",
			slog.String("Address", fmt.Sprintf("0x%x", key)),
			slog.Any("error", err),
		)
		return nil, core1_0.VKErrorUnknown, err
	}

	raw.DebugAssert(alignment == block.alignment, "reallocation alignment does not match the block's original alignment")

	newPtr, res, err := a.allocateFromScope(newSize, alignment, scope)
	if err != nil {
		a.logger.Error("failed to reallocate host block",
			slog.Int("OldSize", block.size),
			slog.Int("NewSize", newSize),
			slog.Int("Alignment", int(alignment)),
		)
		return nil, res, err
	}

	newBlock, _ := a.blocks.Get(uintptr(newPtr))
	copy(newBlock.memory.Bytes(), block.memory.Bytes()[:minInt(newSize, block.size)])

	a.deallocateBlock(key)

	return newPtr, res, nil
}

// Deallocate releases a block previously returned by Allocate or
// Reallocate. Unknown addresses, including nil, are ignored.
func (a *Allocator) Deallocate(ptr unsafe.Pointer) {
	a.mutex.Lock()
	a.deallocateBlock(uintptr(ptr))
	a.mutex.Unlock()

	raw.DebugValidate(a)
}

func (a *Allocator) deallocateBlock(key uintptr) {
	block, ok := a.blocks.Get(key)
	if !ok {
		return
	}

	if !raw.ValidateMagicValue(block.memory.Ptr(), block.size) {
		panic(fmt.Sprintf("memory corruption detected after host block 0x%x", key))
	}

	a.logger.Debug("Allocator::Deallocate",
		slog.Int("Size", block.size),
		slog.String("Scope", block.scope.String()),
	)

	scopeAllocation := &a.occupied[block.scope]
	scopeAllocation.AllocationBytes -= block.size
	scopeAllocation.AllocationCount--

	if scopeAllocation.AllocationBytes < 0 || scopeAllocation.AllocationCount < 0 {
		panic(fmt.Sprintf("allocation aggregates for scope %s went negative", block.scope))
	}

	a.totalTrackedBytes -= block.size
	a.blocks.Delete(key)
}

// AllocateInternal records an allocation the driver performed through its
// own mechanisms. Only the scope aggregates change; no block is tracked.
// The allocation type is accepted for interface compatibility and does not
// affect bookkeeping.
func (a *Allocator) AllocateInternal(size int, allocationType InternalAllocationType, scope SystemAllocationScope) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("Allocator::AllocateInternal",
		slog.Int("Size", size),
		slog.String("Type", allocationType.String()),
		slog.String("Scope", scope.String()),
	)

	scopeAllocation := &a.occupied[scope]
	scopeAllocation.AllocationBytes += size
	scopeAllocation.AllocationCount++
	a.touched[scope] = true
}

// DeallocateInternal reverses a previous AllocateInternal report.
func (a *Allocator) DeallocateInternal(size int, allocationType InternalAllocationType, scope SystemAllocationScope) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("Allocator::DeallocateInternal",
		slog.Int("Size", size),
		slog.String("Type", allocationType.String()),
		slog.String("Scope", scope.String()),
	)

	scopeAllocation := &a.occupied[scope]
	scopeAllocation.AllocationBytes -= size
	scopeAllocation.AllocationCount--

	if scopeAllocation.AllocationBytes < 0 || scopeAllocation.AllocationCount < 0 {
		panic(fmt.Sprintf("allocation aggregates for scope %s went negative", scope))
	}
}

// ScopeStatistics returns the live aggregates for a single scope, including
// internal allocations reported against it.
func (a *Allocator) ScopeStatistics(scope SystemAllocationScope) Statistics {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.occupied[scope]
}

// TotalStatistics returns the live aggregates summed across all scopes.
func (a *Allocator) TotalStatistics() Statistics {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.totalStatistics()
}

func (a *Allocator) totalStatistics() Statistics {
	var total Statistics
	for scopeIndex := 0; scopeIndex < systemAllocationScopeRange; scopeIndex++ {
		total.AddStatistics(&a.occupied[scopeIndex])
	}

	return total
}

// CalculateDetailedStatistics walks the tracked-block table and returns size
// extremes for one scope. Internal allocations are not included, since their
// individual sizes are never recorded.
func (a *Allocator) CalculateDetailedStatistics(scope SystemAllocationScope) DetailedStatistics {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.calculateDetailedStatistics(scope)
}

func (a *Allocator) calculateDetailedStatistics(scope SystemAllocationScope) DetailedStatistics {
	var stats DetailedStatistics
	stats.Clear()

	a.blocks.Iter(func(key uintptr, block *allocatedBlock) bool {
		if block.scope == scope {
			stats.AddAllocation(block.size)
		}
		return false
	})

	return stats
}

// TrackedBlockCount returns the number of live blocks this allocator
// currently owns.
func (a *Allocator) TrackedBlockCount() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.blocks.Count()
}

// InternalAllocationCount derives the number of live internal allocations
// as the difference between the aggregate allocation count and the number of
// tracked blocks.
func (a *Allocator) InternalAllocationCount() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.totalStatistics().AllocationCount - a.blocks.Count()
}

// LogMemoryUsage emits a human-readable usage report: one line per scope
// that has ever been used, a grand total line, and the derived internal
// allocation count. It has no side effects beyond the log lines.
func (a *Allocator) LogMemoryUsage() {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	for scopeIndex := 0; scopeIndex < systemAllocationScopeRange; scopeIndex++ {
		if !a.touched[scopeIndex] {
			continue
		}

		scopeAllocation := a.occupied[scopeIndex]
		a.logger.Info("scope host allocation usage",
			slog.String("Scope", SystemAllocationScope(scopeIndex).String()),
			slog.Int("AllocationBytes", scopeAllocation.AllocationBytes),
			slog.Int("AllocationCount", scopeAllocation.AllocationCount),
		)
	}

	total := a.totalStatistics()
	a.logger.Info("total host allocation usage",
		slog.Int("AllocationBytes", total.AllocationBytes),
		slog.Int("AllocationCount", total.AllocationCount),
	)
	a.logger.Info("internal host allocations",
		slog.Int("AllocationCount", total.AllocationCount-a.blocks.Count()),
	)
}

// Destroy logs a final usage report along with one line per block that was
// never freed. Outstanding allocations are reported rather than enforced:
// the driver is expected to have released everything by the time the
// allocator is torn down, but a leak on its side should not crash the
// application on the way out.
func (a *Allocator) Destroy() {
	a.mutex.RLock()

	var unfreed []uintptr
	a.blocks.Iter(func(key uintptr, block *allocatedBlock) bool {
		unfreed = append(unfreed, key)
		return false
	})
	slices.Sort(unfreed)

	for _, key := range unfreed {
		block, _ := a.blocks.Get(key)
		a.logger.Error("unfreed host allocation",
			slog.String("Address", fmt.Sprintf("0x%x", key)),
			slog.Int("Size", block.size),
			slog.String("Scope", block.scope.String()),
		)
	}

	a.mutex.RUnlock()

	a.LogMemoryUsage()
}

// Validate cross-checks the scope aggregates against the tracked-block
// table. It is primarily intended for DebugValidate in debug builds, but is
// safe to call at any time.
func (a *Allocator) Validate() error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	var trackedBytes [systemAllocationScopeRange]int
	var trackedCount [systemAllocationScopeRange]int
	totalBytes := 0

	a.blocks.Iter(func(key uintptr, block *allocatedBlock) bool {
		trackedBytes[block.scope] += block.size
		trackedCount[block.scope]++
		totalBytes += block.size
		return false
	})

	if totalBytes != a.totalTrackedBytes {
		return errors.Newf("the listed total of tracked bytes (%d) does not match the actual total (%d)", a.totalTrackedBytes, totalBytes)
	}

	for scopeIndex := 0; scopeIndex < systemAllocationScopeRange; scopeIndex++ {
		scopeAllocation := a.occupied[scopeIndex]

		if scopeAllocation.AllocationBytes < 0 || scopeAllocation.AllocationCount < 0 {
			return errors.Newf("allocation aggregates for scope %s are negative", SystemAllocationScope(scopeIndex))
		}

		if trackedCount[scopeIndex] > 0 && !a.touched[scopeIndex] {
			return errors.Newf("scope %s owns tracked blocks but was never marked used", SystemAllocationScope(scopeIndex))
		}

		// Aggregates include internal allocations on top of tracked blocks,
		// so they can only be larger.
		if scopeAllocation.AllocationBytes < trackedBytes[scopeIndex] {
			return errors.Newf("aggregate bytes for scope %s (%d) are smaller than its tracked bytes (%d)",
				SystemAllocationScope(scopeIndex), scopeAllocation.AllocationBytes, trackedBytes[scopeIndex])
		}

		if scopeAllocation.AllocationCount < trackedCount[scopeIndex] {
			return errors.Newf("aggregate count for scope %s (%d) is smaller than its tracked count (%d)",
				SystemAllocationScope(scopeIndex), scopeAllocation.AllocationCount, trackedCount[scopeIndex])
		}
	}

	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package vkscope

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BuildStatsString renders the allocator's current usage as a JSON string.
// When detailedMap is set, the output additionally carries per-scope size
// extremes and one entry per tracked block.
func (a *Allocator) BuildStatsString(detailedMap bool) string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	writer := jwriter.NewWriter()

	obj := writer.Object()

	total := a.totalStatistics()
	totalObj := obj.Name("Total").Object()
	totalObj.Name("AllocationBytes").Int(total.AllocationBytes)
	totalObj.Name("AllocationCount").Int(total.AllocationCount)
	totalObj.Name("TrackedBlockCount").Int(a.blocks.Count())
	totalObj.Name("InternalAllocationCount").Int(total.AllocationCount - a.blocks.Count())
	totalObj.End()

	scopesObj := obj.Name("Scopes").Object()
	for scopeIndex := 0; scopeIndex < systemAllocationScopeRange; scopeIndex++ {
		if !a.touched[scopeIndex] {
			continue
		}
		scope := SystemAllocationScope(scopeIndex)
		a.printScopeStats(&scopesObj, scope, detailedMap)
	}
	scopesObj.End()

	if detailedMap {
		blocksArr := obj.Name("Blocks").Array()
		a.blocks.Iter(func(key uintptr, block *allocatedBlock) bool {
			blockObj := blocksArr.Object()
			blockObj.Name("Address").String(fmt.Sprintf("0x%x", key))
			blockObj.Name("Size").Int(block.size)
			blockObj.Name("Alignment").Int(int(block.alignment))
			blockObj.Name("Scope").String(block.scope.String())
			blockObj.End()
			return false
		})
		blocksArr.End()
	}

	obj.End()

	return string(writer.Bytes())
}

func (a *Allocator) printScopeStats(json *jwriter.ObjectState, scope SystemAllocationScope, detailedMap bool) {
	scopeObj := json.Name(scope.String()).Object()
	defer scopeObj.End()

	scopeAllocation := a.occupied[scope]
	scopeObj.Name("AllocationBytes").Int(scopeAllocation.AllocationBytes)
	scopeObj.Name("AllocationCount").Int(scopeAllocation.AllocationCount)

	if !detailedMap {
		return
	}

	detailed := a.calculateDetailedStatistics(scope)
	if detailed.AllocationCount == 0 {
		return
	}

	scopeObj.Name("AllocationSizeMin").Int(detailed.AllocationSizeMin)
	scopeObj.Name("AllocationSizeMax").Int(detailed.AllocationSizeMax)
}

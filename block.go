package vkscope

import (
	"github.com/casqade/vkscope/raw"
)

// allocatedBlock is the tracker's record of one live allocation: the raw
// memory it owns plus the request parameters it was created with. The
// alignment recorded here is fixed for the block's whole lifetime -
// reallocation carries it over rather than accepting a new one.
type allocatedBlock struct {
	memory    *raw.Memory
	size      int
	alignment uint
	scope     SystemAllocationScope
}

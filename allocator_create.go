package vkscope

import (
	"github.com/casqade/vkscope/internal/utils"
	"github.com/casqade/vkscope/raw"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return allocatorCreateFlagsMapping.FlagsToString(f)
}

const (
	// AllocatorCreateExternallySynchronized ensures that this allocator will
	// not be synchronized internally. The consumer must guarantee the
	// allocator is used from only one thread at a time or is synchronized by
	// some other mechanism, but performance may improve because internal
	// mutexes are not used.
	AllocatorCreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	AllocatorCreateExternallySynchronized.Register("AllocatorCreateExternallySynchronized")
}

// MemorySource provides aligned host memory to an Allocator. Implementations
// return nil when the request cannot be satisfied.
type MemorySource interface {
	Allocate(size int, alignment uint) *raw.Memory
}

// systemMemorySource delegates to the Go runtime through the raw package.
type systemMemorySource struct{}

func (systemMemorySource) Allocate(size int, alignment uint) *raw.Memory {
	return raw.Allocate(size, alignment)
}

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags

	// HeapSizeLimit can be left as 0. If it is provided, it is the maximum
	// number of bytes the allocator will hand out across all scopes at any
	// one time. The limit is enforced at runtime: requests that would exceed
	// it fail with an out-of-host-memory error.
	HeapSizeLimit int

	// MemorySource can be left nil, in which case host memory is allocated
	// from the Go runtime. Providing a source is mostly useful for tests and
	// for consumers that pool or page their own host memory.
	MemorySource MemorySource
}

// New creates a new Allocator
//
// logger - Used for the per-request trace records and the usage reports. It
// is valid to pass nil, in which case slog.Default() is used
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if options.HeapSizeLimit < 0 {
		return nil, errors.Newf("CreateOptions.HeapSizeLimit was %d, but it cannot be negative", options.HeapSizeLimit)
	}

	source := options.MemorySource
	if source == nil {
		source = systemMemorySource{}
	}

	useMutex := options.Flags&AllocatorCreateExternallySynchronized == 0

	return &Allocator{
		logger:      logger,
		createFlags: options.Flags,
		source:      source,

		heapSizeLimit: options.HeapSizeLimit,
		mutex:         utils.OptionalRWMutex{UseMutex: useMutex},

		blocks: swiss.NewMap[uintptr, *allocatedBlock](42),
	}, nil
}

/*
Package vkscope implements a host-memory allocation tracker for the Vulkan
VkAllocationCallbacks contract. Whenever a driver needs host memory it calls
back into the application with a size, an alignment, and a lifetime scope
(command, object, cache, device, or instance); this package services those
requests from Go-managed memory and keeps per-scope aggregates so that a
driver's host allocation behavior can be observed, audited, and reported.

An Allocator is created once before the Vulkan instance and registered with
the driver through the entry points bundled by Callbacks. It tracks every
live block it hands out, supports the reallocation contract (allocate new,
copy, free old - the old block survives a failed resize untouched), accounts
for driver-internal allocations reported through the notification hooks, and
can render its state as log lines or a JSON string at any point. After the
driver has released all its resources, Destroy logs a final report listing
anything that was never freed.

The allocator is safe for concurrent use by default. Drivers that are known
to serialize callback invocations can opt out of internal locking with
AllocatorCreateExternallySynchronized.
*/
package vkscope

// Package constants holds default driver-configuration values independent
// of any specific flash part (queue-table sizing, buffer sizing guidance).
// Flash-part-specific constants (opcodes, page/sector sizes) live in
// internal/flashparams instead, per spec.md §9's "pass them as a
// configuration value" design note.
package constants

// DefaultNumQueueSlots is a reasonable default queue-table size for small
// embedded targets; callers needing more queues pass their own count to
// New.
const DefaultNumQueueSlots = 5

// DefaultSPIBufferSize matches the worked scenario in spec.md §8: a
// 266-byte buffer, comfortably above the strict minimum of
// page_size+address_bytes+1 (260 bytes for a 256-byte-page, 3-byte-address
// part) that Init requires.
const DefaultSPIBufferSize = 266

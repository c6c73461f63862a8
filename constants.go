package spiflashcb

import "github.com/andkae/SPI-Flash-Circular-Buffer/internal/constants"

// Re-exported defaults for the public API.
const (
	DefaultNumQueueSlots = constants.DefaultNumQueueSlots
	DefaultSPIBufferSize = constants.DefaultSPIBufferSize
)

// Package gpio provides GPIO input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the logical state of a fixed set of GPIO lines.
type Reader interface {
	// Read returns one logical value per configured line, in configuration order.
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the Raspberry Pi header GPIO controller.
const DefaultChip = "gpiochip0"

// Line configures one input line (BCM numbering).
type Line struct {
	Offset int
	// ActiveLow inverts the raw level: raw active reads as logical false.
	ActiveLow bool
}

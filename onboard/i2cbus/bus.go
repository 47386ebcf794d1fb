// Package i2cbus provides the single capability the transmitter needs from
// the hardware: write a block of bytes to a device address at a register
// offset. The controller firmware never talks back on this link.
package i2cbus

const (
	i2c_SLAVE = 0x0703
)

type WriteBus interface {
	Write(addr int, reg uint8, data []byte) error
}

package i2cbus

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

type I2CBus struct {
	fd   *os.File
	lock sync.Mutex
}

func Open(dev string) (bus *I2CBus, err error) {
	fd, err := os.OpenFile(dev, os.O_RDWR, 0600)
	if err != nil {
		return
	}

	return &I2CBus{fd: fd}, nil
}

func ioctl(fd, cmd, arg uintptr) (err error) {
	_, _, e1 := unix.Syscall6(unix.SYS_IOCTL, fd, cmd, arg, 0, 0, 0)
	if e1 != 0 {
		err = e1
	}
	return
}

// connect selects the slave address for the transaction that follows.
// Callers must hold the bus lock.
func (bus *I2CBus) connect(addr int) error {
	return ioctl(bus.fd.Fd(), i2c_SLAVE, uintptr(addr))
}

// Write sends reg followed by data as one block, matching the smbus block
// write the controller firmware expects. Address selection and the write
// happen inside the critical section; payload assembly stays outside it.
func (bus *I2CBus) Write(addr int, reg uint8, data []byte) (err error) {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)

	bus.lock.Lock()
	defer bus.lock.Unlock()

	if err = bus.connect(addr); err != nil {
		return
	}

	_, err = bus.fd.Write(buf)
	return
}

func (bus *I2CBus) Close() error {
	return bus.fd.Close()
}

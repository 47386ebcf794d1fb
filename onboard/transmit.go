package onboard

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Prisol7/Module3-leg/onboard/i2cbus"
)

const DEFAULT_SEND_INTERVAL = 100 * time.Millisecond

// SendGate is a minimum-spacing admission filter for bus writes. Denied
// attempts are dropped, never queued or retried.
type SendGate struct {
	lock     sync.Mutex
	interval time.Duration
	last     time.Time // current baseline: latest admit not yet reverted
	good     time.Time // latest stamp whose write reached the wire
}

func NewSendGate(interval time.Duration) *SendGate {
	if interval <= 0 {
		interval = DEFAULT_SEND_INTERVAL
	}
	return &SendGate{interval: interval}
}

// Admit reports whether a send may happen at now and, if so, advances the
// baseline to now. Decision and update are one atomic step so two
// near-simultaneous senders cannot both pass.
func (g *SendGate) Admit(now time.Time) bool {
	g.lock.Lock()
	defer g.lock.Unlock()

	if now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Commit marks the admit stamped at now as having reached the wire. The
// baseline catches up in case a concurrent revert dragged it behind.
func (g *SendGate) Commit(now time.Time) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if now.After(g.good) {
		g.good = now
	}
	if g.good.After(g.last) {
		g.last = g.good
	}
}

// Revert rolls the baseline back to the last committed stamp. A write that
// never reached the wire must not throttle the retry, and with overlapping
// failures the baseline must never settle on a failed attempt's stamp.
func (g *SendGate) Revert(now time.Time) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.last.Equal(now) {
		g.last = g.good
	}
}

func (g *SendGate) Interval() time.Duration {
	return g.interval
}

type TransmitterInterface interface {
	TrySend() (sent bool, err error)
	ForceSend() error
	Connected() bool
	Interval() time.Duration
	LastSend() time.Time
}

// Transmitter serializes access to the i2c bus and decides when the current
// state actually goes out on the wire. At most one bus transaction is in
// flight at a time across the process.
type Transmitter struct {
	robot RobotInterface
	bus   i2cbus.WriteBus // nil when running without hardware
	addr  int
	gate  *SendGate

	lock     sync.Mutex
	lastSend time.Time
}

func NewTransmitter(robot RobotInterface, bus i2cbus.WriteBus, addr int, gate *SendGate) *Transmitter {
	return &Transmitter{
		robot: robot,
		bus:   bus,
		addr:  addr,
		gate:  gate,
	}
}

// TrySend transmits the current state if the gate admits it. A denied
// attempt is not an error; the mutation that triggered it stands and only
// the write is skipped. A failed write reverts the gate baseline and never
// rolls back actuator state.
func (t *Transmitter) TrySend() (sent bool, err error) {
	now := time.Now()
	if !t.gate.Admit(now) {
		return false, nil
	}

	if err = t.send(); err != nil {
		t.gate.Revert(now)
		return false, err
	}

	t.gate.Commit(now)
	return true, nil
}

// ForceSend bypasses the gate entirely but still takes its turn on the bus.
func (t *Transmitter) ForceSend() error {
	return t.send()
}

func (t *Transmitter) send() (err error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	// format inside the critical section so the last write on the wire
	// always reflects the freshest committed state; the model lock is
	// never held across bus I/O, so there is no lock ordering hazard
	payload := t.robot.SendString()

	if t.bus == nil {
		// no hardware attached: simulate the write so timing and
		// observability behave the same as a live bus
		log.Printf("SEND (dry run): %s", payload)
		t.lastSend = time.Now()
		return nil
	}

	log.Printf("SEND: %s", payload)
	if err = t.bus.Write(t.addr, 0, []byte(payload)); err != nil {
		return fmt.Errorf("i2c write to 0x%02x failed: %v", t.addr, err)
	}

	t.lastSend = time.Now()
	return nil
}

// Connected reports whether a live bus is attached.
func (t *Transmitter) Connected() bool {
	return t.bus != nil
}

func (t *Transmitter) Interval() time.Duration {
	return t.gate.Interval()
}

// LastSend returns the time of the last successful (or simulated) write.
// Zero until something has gone out.
func (t *Transmitter) LastSend() time.Time {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.lastSend
}

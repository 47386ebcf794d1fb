package onboard

import "time"

// RobotConfig is the on-disk device description. The version field gates
// construction so an incompatible config fails loudly instead of driving
// hardware with wrong limits.
type RobotConfig struct {
	Version int

	I2C struct {
		Device  string `yaml:"device"`
		Address int    `yaml:"address"`
	}

	Robot struct {
		StartAngle     float64 `yaml:"start_angle"`
		SendIntervalMs int     `yaml:"send_interval_ms"`
	}
}

// SendInterval returns the configured minimum spacing between bus writes,
// falling back to the default when unset.
func (c RobotConfig) SendInterval() time.Duration {
	if c.Robot.SendIntervalMs <= 0 {
		return DEFAULT_SEND_INTERVAL
	}
	return time.Duration(c.Robot.SendIntervalMs) * time.Millisecond
}

package onboard

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v2"
)

const testYaml = `
version: 1
i2c:
  device: /dev/i2c-1
  address: 0x08
robot:
  start_angle: 45
  send_interval_ms: 250
`

func TestRobotConfigParsing(t *testing.T) {
	var err error
	var config RobotConfig

	Convey("parsing is successful", t, func() {
		err = yaml.Unmarshal([]byte(testYaml), &config)
		So(err, ShouldBeNil)

		Convey("bus target is set", func() {
			So(config.I2C.Device, ShouldEqual, "/dev/i2c-1")
			So(config.I2C.Address, ShouldEqual, 0x08)
		})

		Convey("send interval comes back in milliseconds", func() {
			So(config.SendInterval(), ShouldEqual, 250*time.Millisecond)
		})

		Convey("an unset interval falls back to the default", func() {
			var bare RobotConfig
			So(bare.SendInterval(), ShouldEqual, DEFAULT_SEND_INTERVAL)
		})
	})
}

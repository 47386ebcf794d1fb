package comms

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/Prisol7/Module3-leg/onboard"

	roboterrors "github.com/Prisol7/Module3-leg/onboard/errors"
)

type MockTransmitter struct {
	tries, forces int
	fail          error
}

func (t *MockTransmitter) TrySend() (bool, error) {
	t.tries++
	if t.fail != nil {
		return false, t.fail
	}
	return true, nil
}

func (t *MockTransmitter) ForceSend() error {
	t.forces++
	return t.fail
}

func (t *MockTransmitter) Connected() bool          { return false }
func (t *MockTransmitter) Interval() time.Duration  { return onboard.DEFAULT_SEND_INTERVAL }
func (t *MockTransmitter) LastSend() (ts time.Time) { return }

func testConductor() (*Conductor, *MockTransmitter) {
	var config onboard.RobotConfig
	config.Version = 1
	config.Robot.StartAngle = 45

	robot, _ := onboard.NewRobot(config)
	tx := new(MockTransmitter)
	return &Conductor{Robot: robot, Transmitter: tx}, tx
}

func TestProcessCommand(t *testing.T) {
	Convey("set_leg commits and triggers a gated send", t, func() {
		c, tx := testConductor()

		err := c.ProcessCommand(Cmd{Cmd: "set_leg", Side: "left", Value: 60})
		So(err, ShouldBeNil)
		So(c.Robot.GetState().LeftLeg.Angle, ShouldEqual, 60)
		So(tx.tries, ShouldEqual, 1)
		So(tx.forces, ShouldEqual, 0)
	})

	Convey("set_joint commits the relative offset", t, func() {
		c, tx := testConductor()

		err := c.ProcessCommand(Cmd{Cmd: "set_joint", Side: "right", Value: 20})
		So(err, ShouldBeNil)
		So(c.Robot.GetState().RightJoint.Angle, ShouldEqual, 20)
		So(tx.tries, ShouldEqual, 1)
	})

	Convey("an invalid side is rejected before the model or the bus", t, func() {
		c, tx := testConductor()

		err := c.ProcessCommand(Cmd{Cmd: "set_leg", Side: "sideways", Value: 60})
		So(err, ShouldHaveSameTypeAs, roboterrors.SideNameError{})
		So(c.Robot.GetState().LeftLeg.Angle, ShouldEqual, 45)
		So(tx.tries, ShouldEqual, 0)
	})

	Convey("a range rejection surfaces and skips the send", t, func() {
		c, tx := testConductor()

		err := c.ProcessCommand(Cmd{Cmd: "set_leg", Side: "left", Value: 170})
		So(err, ShouldHaveSameTypeAs, roboterrors.AngleRangeError{})
		So(tx.tries, ShouldEqual, 0)
	})

	Convey("a failed gated send does not fail the command", t, func() {
		c, tx := testConductor()
		tx.fail = errors.New("Remote I/O error")

		err := c.ProcessCommand(Cmd{Cmd: "set_leg", Side: "left", Value: 60})
		So(err, ShouldBeNil)
		So(c.Robot.GetState().LeftLeg.Angle, ShouldEqual, 60)
	})

	Convey("send_now forces a write and surfaces bus errors", t, func() {
		c, tx := testConductor()

		So(c.ProcessCommand(Cmd{Cmd: "send_now"}), ShouldBeNil)
		So(tx.forces, ShouldEqual, 1)

		tx.fail = errors.New("Remote I/O error")
		So(c.ProcessCommand(Cmd{Cmd: "send_now"}), ShouldNotBeNil)
	})

	Convey("unknown commands are refused", t, func() {
		c, _ := testConductor()

		err := c.ProcessCommand(Cmd{Cmd: "self_destruct"})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "self_destruct")
	})
}

func TestBroadcastState(t *testing.T) {
	Convey("connected clients receive state updates after a commit", t, func() {
		c, _ := testConductor()

		upgrader := websocket.Upgrader{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			c.AddClient(conn)
		}))
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		// let the server side register before broadcasting
		time.Sleep(50 * time.Millisecond)

		So(c.ProcessCommand(Cmd{Cmd: "set_leg", Side: "left", Value: 50}), ShouldBeNil)

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		So(err, ShouldBeNil)

		var update StateUpdate
		So(json.Unmarshal(msg, &update), ShouldBeNil)
		So(update.Event, ShouldEqual, "state_update")
		So(update.State.LeftLeg.Angle, ShouldEqual, 50)
		So(update.State.LeftLeg.Initial, ShouldEqual, 45)
	})
}

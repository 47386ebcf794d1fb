package comms

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Prisol7/Module3-leg/onboard"
)

// Cmd is the wire form of a client command.
type Cmd struct {
	Cmd   string  `json:"cmd"`
	Side  string  `json:"side"`
	Value float64 `json:"value"`
}

type StateUpdate struct {
	Event string             `json:"event"`
	State onboard.RobotState `json:"state"`
}

type ErrorMessage struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type ConductorInterface interface {
	ProcessCommand(cmd Cmd) error
}

// Conductor routes client commands into the robot and fans state updates
// back out to every connected client. Connection writes are serialized
// through the conductor's lock; gorilla conns do not tolerate concurrent
// writers.
type Conductor struct {
	Robot       onboard.RobotInterface
	Transmitter onboard.TransmitterInterface

	lock    sync.Mutex
	clients map[*websocket.Conn]bool
}

func (c *Conductor) AddClient(conn *websocket.Conn) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.clients == nil {
		c.clients = make(map[*websocket.Conn]bool)
	}
	c.clients[conn] = true
}

func (c *Conductor) RemoveClient(conn *websocket.Conn) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.clients, conn)
}

// ProcessCommand validates and executes one client command. Range and side
// errors come back to the caller; a throttled or failed bus write never
// fails the command that triggered it, since the mutation already stands.
func (c *Conductor) ProcessCommand(cmd Cmd) error {
	switch cmd.Cmd {
	case "set_leg":
		side, err := onboard.ParseSide(cmd.Side)
		if err != nil {
			return err
		}
		if _, err = c.Robot.SetLeg(side, cmd.Value); err != nil {
			return err
		}
		c.trySend()

	case "set_joint":
		side, err := onboard.ParseSide(cmd.Side)
		if err != nil {
			return err
		}
		if _, err = c.Robot.SetJoint(side, cmd.Value); err != nil {
			return err
		}
		c.trySend()

	case "send_now":
		if err := c.Transmitter.ForceSend(); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unable to process command %q", cmd.Cmd)
	}

	c.BroadcastState()
	return nil
}

func (c *Conductor) trySend() {
	if _, err := c.Transmitter.TrySend(); err != nil {
		log.Printf("send failed: %v", err)
	}
}

// BroadcastState pushes the current snapshot to every connected client.
func (c *Conductor) BroadcastState() {
	msg, err := json.Marshal(StateUpdate{Event: "state_update", State: c.Robot.GetState()})
	if err != nil {
		log.Printf("marshal state: %v", err)
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for conn := range c.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println("write:", err)
		}
	}
}

// SendState answers a single client, used on connect and for get_status.
func (c *Conductor) SendState(conn *websocket.Conn) {
	msg, err := json.Marshal(StateUpdate{Event: "state_update", State: c.Robot.GetState()})
	if err != nil {
		log.Printf("marshal state: %v", err)
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("write:", err)
	}
}

func (c *Conductor) SendError(conn *websocket.Conn, message string) {
	msg, _ := json.Marshal(ErrorMessage{Event: "error", Message: message})

	c.lock.Lock()
	defer c.lock.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("write:", err)
	}
}

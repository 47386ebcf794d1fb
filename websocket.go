package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Prisol7/Module3-leg/comms"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EchoHandler is a plain connectivity probe for client developers.
func EchoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}
		err = c.WriteMessage(mt, message)
		if err != nil {
			log.Println("write:", err)
			break
		}
	}
}

// ControlHandler is the command channel. Clients get the current state on
// connect, then send JSON commands and receive state_update broadcasts.
func ControlHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer conn.Close()

	ENV.Conductor.AddClient(conn)
	defer ENV.Conductor.RemoveClient(conn)

	ENV.Conductor.SendState(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}

		var cmd comms.Cmd
		if err := json.Unmarshal(msg, &cmd); err != nil {
			ENV.Conductor.SendError(conn, "invalid json")
			continue
		}

		// status requests answer only the asking client
		if cmd.Cmd == "get_status" {
			ENV.Conductor.SendState(conn)
			continue
		}

		if err := ENV.Conductor.ProcessCommand(cmd); err != nil {
			ENV.Conductor.SendError(conn, err.Error())
		}
	}
}

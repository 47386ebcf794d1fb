package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/asdine/storm"
	"github.com/caarlos0/env"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"gopkg.in/yaml.v2"

	"github.com/Prisol7/Module3-leg/comms"
	"github.com/Prisol7/Module3-leg/onboard"
	"github.com/Prisol7/Module3-leg/onboard/i2cbus"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"DEVICE_UUID" envDefault:"DEV"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	SRCDIR     string `env:"SRCDIR" envDefault:"."`
	HTMLDIR    string `env:"HTMLDIR" envDefault:"./frontend/dist/"`
	DBFILE     string `env:"DBFILE" envDefault:""`
	DB         *storm.DB
	Conductor  *comms.Conductor
}

var (
	ENV *EnvConfig
)

func init() {
	// Load main config
	ENV = new(EnvConfig)
	env.Parse(ENV)

	// setup the user database
	dbFile := ENV.DBFILE
	if dbFile == "" {
		dbFile, _ = filepath.Abs("./tmp/dev.db")
		dir := filepath.Dir(dbFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.Mkdir(dir, 0755)
		}
	}

	db, err := openDb(dbFile)
	if err != nil {
		panic(err)
	}
	ENV.DB = db

	return
}

func main() {
	// process flags
	dry := flag.Bool("dry", false, "Run without an i2c bus attached (writes are simulated)")
	port := flag.String("port", "0.0.0.0:5000", "Specify the ip:port to listen on")
	flag.Parse()

	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	defer ENV.DB.Close() // close database when finished

	// Load the device description
	filename, err := filepath.Abs(ENV.SRCDIR + "/robot_config.yaml")
	if err != nil {
		panic(err)
	}
	yamlFile, err := ioutil.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("Unable to read yaml file: %v", err))
	}

	var config onboard.RobotConfig
	err = yaml.Unmarshal(yamlFile, &config)
	if err != nil {
		panic(fmt.Sprintf("Unable to unmarshal yaml: %v", err))
	}

	robot, err := onboard.NewRobot(config)
	if err != nil {
		panic(fmt.Sprintf("Unable to initialize robot: %v", err))
	}

	// Attach the bus unless we are explicitly dry; a missing device node
	// downgrades to dry-run rather than refusing to start
	var bus i2cbus.WriteBus
	if !*dry {
		i2c, err := i2cbus.Open(config.I2C.Device)
		if err != nil {
			log.Printf("unable to open i2c bus %s: %v (running dry)", config.I2C.Device, err)
		} else {
			bus = i2c
		}
	}

	gate := onboard.NewSendGate(config.SendInterval())
	transmitter := onboard.NewTransmitter(robot, bus, config.I2C.Address, gate)

	ENV.Conductor = &comms.Conductor{
		Robot:       robot,
		Transmitter: transmitter,
	}

	//---
	// Create a local shell
	//---
	{
		sideNames := func([]string) []string {
			return []string{"left", "right"}
		}

		shell := ishell.New()
		shell.Println("Leg module development shell")
		shell.ShowPrompt(true)
		shell.AddCmd(&ishell.Cmd{
			Name: "createsuperuser",
			Help: "createsuperuser <email> <password>",
			Func: func(c *ishell.Context) {
				// disable the '>>>' for cleaner same line input.
				c.ShowPrompt(false)
				defer c.ShowPrompt(true) // yes, revert when done.

				// get email
				var email string
				if len(c.Args) >= 1 {
					email = c.Args[0]
				} else {
					c.Print("Email: ")
					email = c.ReadLine()
				}

				// get password
				var password string
				if len(c.Args) >= 2 {
					password = c.Args[1]
				} else {
					c.Print("Password: ")
					password = c.ReadPassword()
				}

				// create user
				user := &User{
					Email: email,
					Name:  email,
					Admin: true,
				}
				user.SetPassword([]byte(password))
				err := ENV.DB.Save(user)
				if err != nil {
					panic(err)
				}

				c.Println("Superuser created")
			},
		})

		// Add device specific commands
		shell.AddCmd(&ishell.Cmd{
			Name:      "leg",
			Completer: sideNames,
			Help:      "leg <side> <angle>",
			Func: func(c *ishell.Context) {
				side, err := onboard.ParseSide(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				angle, _ := strconv.ParseFloat(c.Args[1], 64)

				msg, err := robot.SetLeg(side, angle)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(msg)

				if _, err = transmitter.TrySend(); err != nil {
					c.Err(err)
				}
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name:      "joint",
			Completer: sideNames,
			Help:      "joint <side> <relative angle>",
			Func: func(c *ishell.Context) {
				side, err := onboard.ParseSide(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				relative, _ := strconv.ParseFloat(c.Args[1], 64)

				msg, err := robot.SetJoint(side, relative)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(msg)

				if _, err = transmitter.TrySend(); err != nil {
					c.Err(err)
				}
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "send",
			Help: "force an immediate bus write of the current state",
			Func: func(c *ishell.Context) {
				if err := transmitter.ForceSend(); err != nil {
					c.Err(err)
				}
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "state",
			Help: "print the current state and wire payload",
			Func: func(c *ishell.Context) {
				c.Printf("%+v\n", robot.GetState())
				c.Printf("payload: %q\n", robot.SendString())
			},
		})

		// Start an instance of the shell so it can be controlled from the CLI
		go shell.Start()
	}

	//---
	// Build the API routes
	//---
	r.Route("/api", func(r chi.Router) {
		// login
		r.Post("/login", Login)

		r.Get("/status", Status)
		r.Get("/health", Health)

		r.Route("/", func(r chi.Router) {
			// Seek, verify and validate JWT tokens
			r.Use(ValidateJWT)

			r.Get("/refresh_token", JWTRefresh)
		})
	})

	// Add websocket routes
	r.Route("/ws", func(r chi.Router) {
		if !ENV.DEBUG {
			r.Use(ValidateJWT)
		} else {
			fmt.Println("Running in debug mode. Authentication disabled.")
		}

		r.Get("/echo", EchoHandler)
		r.Get("/control", ControlHandler)
	})

	// add static base routes
	FileServer(r, "/", http.Dir(ENV.HTMLDIR))

	fmt.Println("Listening on port", *port)
	if err := http.ListenAndServe(*port, r); err != nil {
		log.Fatal(err)
	}
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&User{}); err != nil {
		return nil, err
	}

	return
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	fs := http.StripPrefix(path, http.FileServer(root))

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	}))
}

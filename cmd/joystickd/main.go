package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/joystick"
	env "github.com/robotalks/courier/pkg/l1/env/connector"
	"github.com/robotalks/courier/pkg/link"
)

func init() {
	env.SetupFlags()
	link.SetupFlags()
	joystick.SetupFlags()
}

func main() {
	flag.Parse()

	loop := fx.NewLoop()
	var sender joystick.Sender
	// a serial device talks to the vehicle directly, like the phone app.
	serial, err := link.NewConfig().Open()
	if err != nil {
		log.Fatalln(err)
	}
	if serial != nil {
		sender = serial
	} else {
		conn := env.NewConfig().MustConnect()
		if adder, ok := conn.(fx.LoopAdder); ok {
			loop.Add(adder)
		}
		sender = joystick.ConnSender(conn)
	}
	loop.Add(joystick.NewConfig().NewController(sender)).RunOrFail()
}

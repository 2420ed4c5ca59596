//go:build tinygo && baremetal && (rp2040 || rp2350)

package main

import (
	"context"
	"time"

	"boardlet/app"
	"boardlet/core/applet"
	"boardlet/core/applet/native"
	"boardlet/core/sched"
	"boardlet/hal"
	"boardlet/kernel"
)

const (
	queueSize = 32
	arenaSize = 16 << 10
)

func main() {
	queue, err := kernel.NewQueue(queueSize)
	if err != nil {
		panic(err)
	}
	board := hal.NewPico(queue)
	debug := board.Debug()

	// Each run gets a fresh scheduler; events left over from the previous
	// applet find no listener and are discarded.
	for {
		s := sched.New(board, queue, nil)
		err := s.Run(context.Background(), native.New(s, arenaSize, app.NewBlink(500)))
		if term := applet.TerminationOf(err); term != nil {
			debug.Println("applet stopped: " + term.Error())
		} else {
			debug.Println("applet returned")
		}
		time.Sleep(time.Second)
	}
}

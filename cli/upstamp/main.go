package main

import (
	"log"

	"github.com/frankonly/upstamp/cli"
)

func main() {
	if err := cli.Init(); err != nil {
		log.Fatalf("failed to initialize upstamp: %v", err)
	}

	cli.Execute()
}

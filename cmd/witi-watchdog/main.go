package main

import (
	"github.com/lazzaau/witi-watchdog/cmd/witi-watchdog/cmd"
)

func main() {
	cmd.Execute()
}

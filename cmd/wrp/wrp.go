package main

import (
	"os"

	"github.com/kiosk404/warp/internal/wrp/cmd"
	_ "go.uber.org/automaxprocs"
)

func main() {
	command := cmd.NewDefaultWrpCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

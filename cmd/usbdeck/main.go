package main

import (
	"fmt"
	"os"

	"github.com/usbdeck/usbdeck/internal/cli"
)

const appName = "usbdeck"

var (
	version   = "develop"
	revision  = "unset"
	buildDate = "unknown"
)

func main() {
	if err := cli.Run(cli.Version{
		AppName:   appName,
		Version:   version,
		Revision:  revision,
		BuildDate: buildDate,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

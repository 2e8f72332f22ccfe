// Package main is the e2edrive command itself.
package main

import (
	"os"

	"go.viam.com/e2edrive/cli"
	"go.viam.com/e2edrive/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.Global().Fatal(err)
	}
}

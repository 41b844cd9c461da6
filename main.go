package main

import (
	"github.com/acolella/linkshort/cmd"
	_ "github.com/acolella/linkshort/cmd/cli"
	_ "github.com/acolella/linkshort/cmd/server"
)

func main() {
	cmd.Execute()
}

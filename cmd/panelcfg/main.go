package main

import (
	"log"

	"github.com/constr-tools/panelcfg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}

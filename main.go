package main

import (
	"log"

	"github.com/pverdier/tripsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/hijri-month/internal/cli"
)

func main() {
	cli.Execute()
}

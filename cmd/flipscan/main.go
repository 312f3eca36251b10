package main

import (
	"github.com/flipintegrity/flipscan/internal/cli"
)

func main() {
	cli.Execute()
}

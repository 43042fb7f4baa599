package main

import (
	"github.com/stargods/boxcode/internal/cli"
)

func main() {
	cli.Execute()
}

package main

import (
	"os"

	"github.com/vinquery/nhtsavin/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}

package main

import (
	"github.com/ventia-app/ventia/cmd"
)

func main() {
	cmd.Execute()
}

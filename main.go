package main

import (
	"github.com/foomo/roadmapserver/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/namedcache/namedcache/cmd"
)

func main() {
	cmd.Execute()
}

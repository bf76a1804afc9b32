package main

import "github.com/schrutefarms/dunder/cmd"

func main() {
	cmd.Execute()
}

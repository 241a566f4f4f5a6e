package main

import "github.com/sumforge/uniongen/cmd/uniongen/commands"

func main() {
	commands.Execute()
}

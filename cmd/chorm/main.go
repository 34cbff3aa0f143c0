package main

import "github.com/chorm-dev/chorm/cmd/chorm/commands"

func main() {
	commands.Execute()
}

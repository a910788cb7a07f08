package main

import "github.com/diogo/chatfront/internal/commands"

func main() {
	commands.Execute()
}

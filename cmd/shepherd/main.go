// Package main is the entry point for the shepherd CLI.
package main

import (
	"github.com/shepherdly/shepherd-bot/cmd/shepherd/commands"
)

func main() {
	commands.Execute()
}

package main

import (
	"github.com/Laisky/laisky-qa-bot/cmd"
)

func main() {
	cmd.Execute()
}

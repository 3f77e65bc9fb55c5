// Package main is the entry point for the issue labeler CLI.
package main

import (
	"github.com/glideinwms/issue-labeler/cmd/labeler/commands"
)

func main() {
	commands.Execute()
}

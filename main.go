// Package main is the entry point for the mureport CLI.
package main

import "gooze.dev/pkg/mureport/cmd"

func main() {
	cmd.Execute()
}

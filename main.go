// Package main is the entry point for the scopefix CLI.
package main

import "github.com/mouse-blink/scopefix/cmd"

func main() {
	cmd.Execute()
}

// Package main is the entry point for the crashtriage CLI.
package main

import "crashtriage.dev/pkg/crashtriage/cmd"

func main() {
	cmd.Execute()
}

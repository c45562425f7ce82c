package main

import "cloudwarden/cmd"

// main is the entry point of the program.
func main() {
	cmd.Execute()
}

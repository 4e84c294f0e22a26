package main

import "github.com/jkalivoda/moodreel/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/mlutzke/raceday/cmd"

func main() {
	cmd.Execute()
}

package main

import "goalboard/cmd"

func main() {
	cmd.Execute()
}

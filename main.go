package main

import "github.com/Abduluthman/quail/cmd"

func main() {
	cmd.Execute()
}

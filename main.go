package main

import "github.com/hoxchess/hoxnet/cmd"

func main() {
	cmd.Execute()
}

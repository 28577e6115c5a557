package main

import "github.com/papapumpkin/mash/cmd"

func main() {
	cmd.Execute()
}

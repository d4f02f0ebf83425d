package main

import "github.com/snaptick/facematch/cmd"

func main() {
	cmd.Execute()
}

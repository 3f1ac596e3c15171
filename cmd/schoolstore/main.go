package main

import "github.com/go-arrower/schoolstore/cmd"

func main() {
	cmd.Execute()
}

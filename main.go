package main

import "github.com/usefloww/floww/cmd"

func main() {
	cmd.Execute()
}

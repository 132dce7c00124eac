package main

import "github.com/aish-sh/aish/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/tanq16/redl/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/cueprep/cueprep/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/mhagger/git-when-merged/cmd"

func main() {
	cmd.Execute()
}

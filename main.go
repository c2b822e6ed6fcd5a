package main

import "github.com/kasuboski/watchlistarr/cmd"

func main() {
	cmd.Execute()
}

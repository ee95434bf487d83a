package main

import "media-intel/cmd"

func main() {
	cmd.Execute()
}

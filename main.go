package main

import "insyn-search/cmd"

func main() {
	cmd.Execute()
}

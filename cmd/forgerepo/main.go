package main

import "forgerepo/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/joingate/joingate/internal/cli"

func main() {
	cli.Execute()
}

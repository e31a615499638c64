package main

import "github.com/dicematch/server/internal/cli"

func main() {
	cli.Execute()
}

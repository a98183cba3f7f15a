package main

import "github.com/rustyeddy/dunkbonds/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/packspec/schemapack/internal/cli"

func main() {
	cli.Execute()
}

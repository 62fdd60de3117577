package main

import "github.com/ogulcanaydogan/battery-observer/internal/cli"

func main() {
	cli.Execute()
}

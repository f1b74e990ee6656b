package main

import "github.com/mcoot/sudokuduo/internal/cli"

func main() {
	cli.Execute()
}

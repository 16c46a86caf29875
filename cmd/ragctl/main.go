package main

import "github.com/mvp-joe/ragctl/internal/cli"

func main() {
	cli.Execute()
}

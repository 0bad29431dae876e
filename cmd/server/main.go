package main

import "site-panel/internal/cli"

func main() {
	cli.Execute()
}

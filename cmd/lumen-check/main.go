package main

import "github.com/lumen-lang/lumen/pkg/cmd"

func main() {
	cmd.Execute()
}

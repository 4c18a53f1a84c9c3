package main

import "github.com/mvp-joe/semdex/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/atikulmunna/canlens/internal/cmd"

func main() {
	cmd.Execute()
}

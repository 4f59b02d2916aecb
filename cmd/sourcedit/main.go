package main

import "github.com/MrSnakeDoc/sourcedit/internal/cli"

func main() {
	cli.Execute()
}

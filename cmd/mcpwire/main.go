package main

import "github.com/ggoodman/mcp-wire/cmd/mcpwire/cmd"

func main() {
	cmd.Execute()
}

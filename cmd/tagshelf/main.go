// Package main is the tagshelf command.
package main

import "github.com/mesh-intelligence/tagshelf/internal/cli"

func main() {
	cli.Execute()
}

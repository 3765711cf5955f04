package main

import "github.com/oksasatya/go-blog-graph/cmd/blogctl/commands"

func main() {
	commands.Execute()
}

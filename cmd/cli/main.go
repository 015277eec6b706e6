package main

import "booksync/cmd/cli/command"

func main() {
	command.Execute()
}

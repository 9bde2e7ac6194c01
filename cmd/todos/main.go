// Command todos runs the todo-list web server and its maintenance commands.
package main

import "github.com/mesh-intelligence/todos/internal/cli"

func main() {
	cli.Execute()
}

package main

import "kanban-board.com/kanban-board/cmd"

func main() {
	cmd.Execute()
}

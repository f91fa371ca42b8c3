package main

import "rhodes-todo/cmd/rhodes/root"

func main() {
	root.Execute()
}

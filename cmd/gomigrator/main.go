package main

import "github.com/dbsmedya/gomigrator/cmd/gomigrator/cmd"

func main() {
	cmd.Execute()
}

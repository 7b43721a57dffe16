package main

import "github.com/KaramelBytes/lipidflow-cli/cmd"

func main() {
	cmd.Execute()
}

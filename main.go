package main

import "github.com/nextlevelbuilder/rigbot/cmd"

func main() {
	cmd.Execute()
}

package main

import "taxtoken/cmd"

func main() {
	cmd.Execute()
}

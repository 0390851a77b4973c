package main

import "github.com/roamstack/attractions-api/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/gpc/timesheets/cmd"

func main() {
	cmd.Execute()
}

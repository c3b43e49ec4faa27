package main

import "github.com/jarmstrongdbrx/data-entry-app/cmd"

func main() {
	cmd.Execute()
}

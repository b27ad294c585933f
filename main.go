package main

import "github.com/deploymenttheory/go-cvdisk/cmd"

func main() {
	cmd.Execute()
}

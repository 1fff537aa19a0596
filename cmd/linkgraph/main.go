package main

import "github.com/emrgen/linkgraph/cmd"

func main() {
	cmd.Execute()
}

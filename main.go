package main

import "github.com/mselser95/venuehub/cmd"

func main() {
	cmd.Execute()
}

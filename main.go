package main

import "siteops/cmd"

func main() {
	cmd.Execute()
}

package main

import "resizer/cmd"

func main() {
	cmd.Execute()
}

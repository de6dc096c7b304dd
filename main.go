package main

import (
	"melofm/cmd"
)

func main() {
	cmd.Execute()
}

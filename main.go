package main

import "github.com/meysamhadeli/reactforge/cmd"

func main() {
	cmd.Execute()
}

/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/dicer/cmd"

func main() {
	cmd.Execute()
}

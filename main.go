/*
Copyright © 2026 Liam Murray (lmurray-au) <liam@lmurray-au.dev>
*/
package main

import (
	"github.com/lmurray-au/dbmaint/cmd"
)

func main() {
	cmd.Execute()
}

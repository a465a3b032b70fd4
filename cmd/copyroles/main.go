package main

import (
	"os"

	"github.com/alma-tools/copyroles/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

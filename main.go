package main

import (
	"fmt"

	"github.com/nidhish-srivastava/defi-lending-protocol/cmd"
)

var (
	version string
	commit  string
)

func main() {
	cmd.Execute(fmt.Sprintf("%s-%s", version, commit))
}

package main

import (
	cmd "github.com/cozy-creator/model-server/cmd/modelserver"
)

func main() {
	cmd.Execute()
}

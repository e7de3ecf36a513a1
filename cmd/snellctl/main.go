package main

import (
	"github.com/snellmaster/snellctl/internal/cli"
	"github.com/snellmaster/snellctl/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}

package main

import (
	"github.com/luiz-simples/redix/internal/cli"
)

func main() {
	cli.Execute()
}

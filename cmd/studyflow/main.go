package main

import (
	"github.com/studyflowhq/studyflow/adapter/cli"
)

func main() {
	cli.Execute()
}

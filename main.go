package main

import (
	"fmt"
	"os"

	"github.com/shivasurya/apimisuse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

var osExit = os.Exit

package main

import (
	"github.com/Aditya-max148/student-risk-dashboard/cmd/cli"
)

// main is the entry point for the risk-admin command-line tool.
// main 是 risk-admin 命令行工具的入口点。
func main() {
	cli.Execute()
}

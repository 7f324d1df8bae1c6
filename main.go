package main

import "github.com/wazo-platform/wazo-openapi-generator/cmd"

func main() {
	cmd.Execute()
}

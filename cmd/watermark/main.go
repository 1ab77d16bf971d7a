package main

import "github.com/vietddude/watermark/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/MattLee479/UpdatedWebsite2/internal/cmd"

func main() {
	cmd.Execute()
}

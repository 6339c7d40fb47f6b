package main

import "github.com/Danhnam1/Audit-System-sub000/cmd"

func main() {
	cmd.Execute()
}

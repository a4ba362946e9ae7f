package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/todo-calendar-api/config"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

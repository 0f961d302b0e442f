package main

import (
	"os"

	"github.com/maiaiia/pseudocronic/internal/cli"
	"github.com/maiaiia/pseudocronic/internal/logging"
)

func main() {
	logging.Init(os.Getenv("APP_ENV"))
	cli.Execute()
}

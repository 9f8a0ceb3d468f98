package main

import (
	"github.com/Buggy1111/tlacenka/internal/app"
	"github.com/Buggy1111/tlacenka/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}

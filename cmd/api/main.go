package main

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/bikeshop/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}

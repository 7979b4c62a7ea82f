// Package main runs the relink HTTP server.
//
//	@title			relink API
//	@version		1.0
//	@description	Multi-provider URL shortener with a per-session history
//	@host			localhost:8080
//	@BasePath		/
//	@schemes		http https
package main

import (
	"go.uber.org/fx"

	_ "github.com/sp3dr4/relink/docs"
	relinkfx "github.com/sp3dr4/relink/internal/fx"
)

func main() {
	fx.New(
		relinkfx.HTTPServerModules,
		fx.NopLogger,
	).Run()
}

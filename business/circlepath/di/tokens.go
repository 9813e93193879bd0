// Package di contains dependency injection tokens for the circlepath context.
package di

import (
	"github.com/fd1az/circlepath-bot/business/circlepath/app"
	"github.com/fd1az/circlepath-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Engine  = di.NewToken[*app.Engine]("circlepath.Engine")
	Scanner = di.NewToken[*app.Scanner]("circlepath.Scanner")
)

// Private dependency tokens - internal to circlepath module
var (
	Reporter = di.NewToken[app.Reporter]("circlepath:reporter")
)

// Helper functions for type-safe access
func GetEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, Engine)
}

func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

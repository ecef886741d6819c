// Package autoload initializes the global logger from the environment when
// blank-imported. Intended for main packages only.
package autoload

import (
	configx "github.com/saveurlabs/saveur-agent/pkg/config"
	logx "github.com/saveurlabs/saveur-agent/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}

//go:build linux

package main

import (
	"github.com/robodone/printline/pkg/config"
	"github.com/robodone/printline/transport"
)

func openNativeLinux(cfg *config.Config) (transport.Transport, error) {
	return transport.OpenNativeLinux(cfg.Port, cfg.Baud, cfg.ConnectTimeout())
}

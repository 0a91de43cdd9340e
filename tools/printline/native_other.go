//go:build !linux

package main

import (
	"fmt"

	"github.com/robodone/printline/pkg/config"
	"github.com/robodone/printline/transport"
)

func openNativeLinux(cfg *config.Config) (transport.Transport, error) {
	return nil, fmt.Errorf("--native is only available on linux")
}

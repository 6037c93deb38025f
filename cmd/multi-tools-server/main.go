// Command multi-tools-server runs the deterministic JSON tool service.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/YanKe1816/multi-tools-server/i18n"
	"github.com/YanKe1816/multi-tools-server/internal/config"
	"github.com/YanKe1816/multi-tools-server/internal/server"
)

func main() {
	var configPath string
	var addr string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&addr, "addr", "", "listen address, overrides the config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatalf("%v", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	i18n.SetLanguage(cfg.Language)

	srv := server.New(cfg)
	fmt.Fprintf(os.Stderr, "multi-tools-server listening on %s\n", cfg.Addr)
	if err := srv.Start(cfg.Addr); err != nil {
		fatalf("serve: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

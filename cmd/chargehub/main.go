// chargehub runs the OCPP 2.0.1 management system. The deployment mode
// selects what this process hosts:
//
//	all            the central system and every configured module
//	general        the central system only
//	<module name>  one business module, e.g. transactions
//
// Configuration comes from the --config file with CHARGEHUB_* environment
// overrides; flags override both.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/abhissng/chargehub/adapters/viper"
	"github.com/abhissng/chargehub/server"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("chargehub", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a yaml, json or toml configuration file")
	flags.String("mode", "all", "deployment mode: all, general or a module name")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	port := flags.Int("port", 0, "listen port, overriding server.port or the module section port")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	v := viper.NewViper(*configFile)
	bindings := map[string]string{"mode": "mode"}
	if flags.Changed("log-level") {
		bindings["server.logLevel"] = "log-level"
	}
	if err := v.BindFlags(flags, bindings); err != nil {
		return err
	}
	cfg, err := v.Load()
	if err != nil {
		return err
	}

	var opts []server.Option
	if flags.Changed("port") {
		opts = append(opts, server.WithPort(*port))
	}
	srv, err := server.New(context.Background(), cfg, v.GetString("mode"), opts...)
	if err != nil {
		return err
	}
	return srv.Run(context.Background())
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

func setupFlagSet(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "the configuration file to use.  Overrides the search path.")
	fs.BoolP("debug", "d", false, "enables debug logging.  Overrides configuration.")
	fs.BoolP("version", "v", false, "print version and exit")
}

func setup(args []string) (*viper.Viper, *zap.Logger, error) {
	l, err := zap.NewDevelopment() // initial value
	if err != nil {
		return nil, l, fmt.Errorf("failed to create zap logger: %w", err)
	}

	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	setupFlagSet(fs)
	err = fs.Parse(args)
	if err != nil {
		return nil, l, fmt.Errorf("failed to parse args: %w", err)
	}
	if printVersion, _ := fs.GetBool("version"); printVersion {
		printVersionInfo(os.Stdout)
		os.Exit(0)
	}

	v := viper.New()
	if err = readConfig(v, fs); err != nil {
		return v, l, fmt.Errorf("failed to read config file: %w", err)
	}

	var c sallust.Config
	err = v.UnmarshalKey("logging", &c, arrange.ComposeDecodeHooks(sallust.DecodeHook))
	if err != nil {
		return v, l, err
	}

	l, err = c.Build()
	return v, l, err
}

// readConfig loads the file named by --file, or searches the standard
// locations for one named after the application.
func readConfig(v *viper.Viper, fs *pflag.FlagSet) error {
	if file, _ := fs.GetString("file"); len(file) > 0 {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(applicationName)
		v.AddConfigPath(fmt.Sprintf("/etc/%s", applicationName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.%s", applicationName))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	if debug, _ := fs.GetBool("debug"); debug {
		v.Set("logging.level", "DEBUG")
	}
	return nil
}

func printVersionInfo(w io.Writer) {
	fmt.Fprintf(w, "%s:\n", applicationName)
	fmt.Fprintf(w, "  version: \t%s\n", Version)
	fmt.Fprintf(w, "  go version: \t%s\n", runtime.Version())
	fmt.Fprintf(w, "  built time: \t%s\n", BuildTime)
	fmt.Fprintf(w, "  git commit: \t%s\n", GitCommit)
	fmt.Fprintf(w, "  os/arch: \t%s/%s\n", runtime.GOOS, runtime.GOARCH)
}

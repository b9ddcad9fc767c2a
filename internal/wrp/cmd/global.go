package cmd

import (
	"github.com/spf13/pflag"
)

var (
	globalConfigPath string
)

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&globalConfigPath,
		"conf",
		"c",
		"",
		"Path to the YAML configuration file")
}

func GetConfigPath() string {
	return globalConfigPath
}

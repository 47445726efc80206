// Command dtbin inspects and edits DataTank binary containers.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/robert-malhotra/go-dtbin/dtbin"
)

var log = &logrus.Logger{
	Out:   os.Stderr,
	Level: logrus.WarnLevel,
	Hooks: make(logrus.LevelHooks),
	Formatter: &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	},
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:          "dtbin",
		Short:        "Inspect and edit DataTank binary files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.TraceLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log rescans and appends")

	cmd.AddCommand(
		newListCommand(),
		newInfoCommand(),
		newDumpCommand(),
		newImportImageCommand(),
		newExportImageCommand(),
		newPutTextCommand(),
	)
	return cmd
}

func fileOptions() []dtbin.Option {
	return []dtbin.Option{dtbin.WithLogger(log.WithField("prefix", "dtbin"))}
}

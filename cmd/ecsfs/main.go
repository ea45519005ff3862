// Command ecsfs creates, inspects and edits ECS150FS volumes in disk images and block devices
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	defaultLogFormatter = &log.TextFormatter{}

	// conf is the configuration of the running command, set up before any action runs
	conf = &Config{}
)

// infoFormatter overrides the default format for Info() log events to
// provide an easier to read output
type infoFormatter struct {
}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  appName,
		Usage: "work with ECS150FS volumes without mounting them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file, overridden by " + envVarPrefix + "_* environment variables and flags",
				Value:   defaultConfigFile(),
			},
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "disk image or block device holding the volume",
			},
			&cli.Int64Flag{
				Name:  "offset",
				Usage: "byte offset of the volume inside the image",
			},
			&cli.Int64Flag{
				Name:  "size",
				Usage: "size of the volume in bytes, defaults to the rest of the image after --offset",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose execution",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "quiet execution",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			mkfsCmd(),
			infoCmd(),
			lsCmd(),
			statCmd(),
			catCmd(),
			addCmd(),
			rmCmd(),
			importCmd(),
			verifyCmd(),
			exportCmd(),
			cloneCmd(),
			checkCmd(),
			hexdumpCmd(),
		},
	}
}

// setup loads the configuration, applies flags over it and sets up logging
func setup(c *cli.Context) error {
	loaded, err := LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("image") {
		loaded.Image = c.String("image")
	}
	if c.IsSet("offset") {
		loaded.Offset = c.Int64("offset")
	}
	if c.IsSet("size") {
		loaded.Size = c.Int64("size")
	}
	conf = loaded

	log.SetFormatter(new(infoFormatter))
	log.SetLevel(log.InfoLevel)
	if conf.LogLevel != "" {
		level, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", conf.LogLevel, err)
		}
		log.SetLevel(level)
	}
	quiet, verbose := c.Bool("quiet"), c.Bool("verbose")
	if quiet && verbose {
		return fmt.Errorf("can't set quiet and verbose flag at the same time")
	}
	if quiet {
		log.SetLevel(log.ErrorLevel)
	}
	if verbose {
		// Switch back to the standard formatter
		log.SetFormatter(defaultLogFormatter)
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

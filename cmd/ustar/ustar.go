// Command ustar packs, lists and extracts POSIX 1003.1-1988 (ustar) tape
// archives.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/ident"
	"github.com/aurora-is-near/ustar/src/ustar"
	"github.com/aurora-is-near/ustar/src/walk"
)

const defaultExtractDir = "./out"

var (
	archiveFile string
	verbose     bool
	noTerminate bool
	humanSizes  bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ustar",
		Short:        "Pack, list and extract POSIX ustar tape archives",
		SilenceUsage: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&archiveFile, "file", "f", "", "in/out tar file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose mode")
	_ = cmd.MarkPersistentFlagRequired("file")
	cmd.AddCommand(
		newAddCommand(),
		newCreateCommand(),
		newListCommand(),
		newExtractCommand(),
	)
	return cmd
}

func newOptions() ustar.Options {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return ustar.Options{
		Owner:          ownerFromProcess,
		Walk:           walk.List,
		Terminate:      !noTerminate,
		VerifyChecksum: true,
		HumanSizes:     humanSizes,
		Logger:         log,
	}
}

func ownerFromProcess() ustar.Owner {
	id := ident.Current()
	return ustar.Owner{User: id.User, Group: id.Group, UID: id.UID, GID: id.GID}
}

// requireArchive rejects actions against a missing archive file before any
// scan or append starts.
func requireArchive() error {
	fi, err := os.Stat(archiveFile)
	if err != nil {
		return errors.Errorf("no such file: %q", archiveFile)
	}
	if fi.IsDir() {
		return errors.Errorf("not a file: %q", archiveFile)
	}
	return nil
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <file|dir>",
		Short: "create a tar archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return ustar.NewWriter(newOptions()).Create(archiveFile, args[0])
		},
	}
	cmd.Flags().BoolVar(&noTerminate, "no-terminate", false, "do not finish the archive with two zero blocks")
	return cmd
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "add a file to the tar archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireArchive(); err != nil {
				return err
			}
			return ustar.NewWriter(newOptions()).Add(archiveFile, args[0])
		},
	}
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list the contents of an archive",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireArchive(); err != nil {
				return err
			}
			return ustar.NewReader(newOptions()).List(archiveFile, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&humanSizes, "human", false, "print sizes in human readable units")
	return cmd
}

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [dest]",
		Short: "extract files from an archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireArchive(); err != nil {
				return err
			}
			dest := defaultExtractDir
			if len(args) > 0 {
				dest = args[0]
			}
			return ustar.NewReader(newOptions()).Extract(archiveFile, dest)
		},
	}
}

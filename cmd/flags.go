package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		logrus.Errorf("missing: %s", msg)
		if len(providedFlags) > 0 {
			logrus.Infof("provided: %s", strings.Join(providedFlags, " "))
		}

		cmd.Println("")

		_ = cmd.Usage()

		return true
	}

	return false
}

// checkAnyFlag reports, like checkMissingFlags, whether none of flags was set.
// alternative names the flag that may stand in for all of them.
func checkAnyFlag(cmd *cobra.Command, flags []string, alternative string) bool {
	for _, name := range flags {
		if cmd.Flag(name).Changed {
			return false
		}
	}

	var msg string
	for _, f := range flags {
		msg += fmt.Sprintf("--%s ", f)
	}

	logrus.Errorf("missing one of: %s(or --%s)", msg, alternative)

	cmd.Println("")

	_ = cmd.Usage()

	return true
}

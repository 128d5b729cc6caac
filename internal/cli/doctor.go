// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// doctorCheck is one row of the doctor report.
type doctorCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// toolLocator finds an external binary's path, satisfied by exec.LookPath
// in production and stubbed in tests.
type toolLocator func(name string) (string, error)

// reachabilityProber confirms the configured provider backend can reach
// its API with the credentials on hand. internal/provider.Provider
// satisfies this via its List method.
type reachabilityProber interface {
	List(ctx context.Context, namePrefix string) ([]provider.VM, error)
}

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(parent *cobra.Command) {
	var initConfig bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that voyager's prerequisites are present and reachable",
		Long: `Verify that the required external tools (ssh, git) are on PATH and
that the configured provider backend can be reached with the configured
credentials. Read-only beyond a connectivity probe, unless --init-config
is given.

Examples:
  voyager doctor
  voyager doctor --output json
  voyager doctor --init-config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, os.Stdout, initConfig)
		},
	}
	cmd.Flags().BoolVar(&initConfig, "init-config", false, "write a default global config file if one does not exist yet")
	parent.AddCommand(cmd)
}

func runDoctor(ctx context.Context, cmd *cobra.Command, w io.Writer, initConfig bool) error {
	output := cmd.Flag("output").Value.String()
	tui.CheckNoColor()

	if initConfig {
		path, written, err := config.SaveGlobalDefaults()
		if err != nil {
			return err
		}
		out := tui.NewOutput(w, output)
		if written {
			out.Success("wrote default configuration to " + path)
		} else {
			out.Info(path + " already exists; left untouched")
		}
	}

	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	return runDoctorWithDeps(ctx, w, output, exec.LookPath, rt.provider, rt.cfg.Provider)
}

func runDoctorWithDeps(ctx context.Context, w io.Writer, output string, lookPath toolLocator, prov reachabilityProber, providerName string) error {
	checks := []doctorCheck{
		toolCheck(lookPath, "ssh"),
		toolCheck(lookPath, "git"),
		providerCheck(ctx, prov, providerName),
	}

	out := tui.NewOutput(w, output)
	if output == OutputJSON {
		if jsonErr := out.JSON(checks); jsonErr != nil {
			return jsonErr
		}
	} else {
		headers := []string{"CHECK", "STATUS", "DETAIL"}
		rows := make([][]string, 0, len(checks))
		for _, c := range checks {
			status := "ok"
			if !c.OK {
				status = "fail"
			}
			rows = append(rows, []string{c.Name, status, c.Detail})
		}
		out.Table(headers, rows)
	}

	for _, c := range checks {
		if !c.OK {
			return fmt.Errorf("%w: %s: %s", voyageerr.ErrExecError, c.Name, c.Detail)
		}
	}
	return nil
}

func toolCheck(lookPath toolLocator, name string) doctorCheck {
	path, err := lookPath(name)
	if err != nil {
		return doctorCheck{Name: name, OK: false, Detail: "not found on PATH"}
	}
	return doctorCheck{Name: name, OK: true, Detail: path}
}

func providerCheck(ctx context.Context, prov reachabilityProber, providerName string) doctorCheck {
	if providerName == "" {
		providerName = defaultProviderName
	}
	if _, err := prov.List(ctx, ""); err != nil {
		return doctorCheck{Name: "provider:" + providerName, OK: false, Detail: err.Error()}
	}
	return doctorCheck{Name: "provider:" + providerName, OK: true, Detail: "reachable"}
}

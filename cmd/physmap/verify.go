package main

import (
	"fmt"

	"github.com/arloliu/physmap/handoff"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <image>",
		Short: "Check the invariants of a memory map image",
		Long: `The verify command attaches a map image and checks that its count is in
range, its visible entries are sorted and contain no sentinel.

Example:
  physmap verify boot.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

type verifyResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Regions int    `json:"regions"`
	Error   string `json:"error,omitempty"`
}

func runVerify(args []string) error {
	path := args[0]

	r, err := handoff.Attach(path)
	if err != nil {
		return fmt.Errorf("failed to attach %s: %w", path, err)
	}
	defer r.Close()

	res := verifyResult{Path: path, Valid: true}
	verr := r.Validate()
	if verr != nil {
		res.Valid = false
		res.Error = verr.Error()
	} else {
		res.Regions = r.Map().Len()
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.Valid {
		printInfo("%s %s (%d regions)\n", styled(usableStyle, "OK"), path, res.Regions)
	}

	if verr != nil {
		return fmt.Errorf("%s: %w", path, verr)
	}

	return nil
}

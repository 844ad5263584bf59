package main

import (
	"fmt"

	"github.com/arloliu/physmap/handoff"
	"github.com/arloliu/physmap/loader"
	"github.com/spf13/cobra"
)

var buildExitBootServices bool

func init() {
	rootCmd.AddCommand(newBuildCmd())
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <regions.yaml> <out.img>",
		Short: "Build a memory map image from a region description",
		Long: `The build command assembles firmware regions and loader reservations
described in a YAML file into a sorted memory map, and publishes the
map image in host byte order.

Example:
  physmap build regions.yaml boot.img
  physmap build regions.yaml boot.img --exit-boot-services`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args)
		},
	}

	cmd.Flags().BoolVar(&buildExitBootServices, "exit-boot-services", false,
		"Retag boot services memory as conventional")

	return cmd
}

func runBuild(args []string) error {
	inPath, outPath := args[0], args[1]

	rf, err := loadRegionFile(inPath)
	if err != nil {
		return err
	}

	opts := []loader.Option{loader.WithLogger(logger)}
	if buildExitBootServices || rf.ExitBootServices {
		opts = append(opts, loader.WithExitBootServices())
	}
	if rf.MinPages > 0 {
		opts = append(opts, loader.WithMinPages(rf.MinPages))
	}

	b, err := loader.NewBuilder(opts...)
	if err != nil {
		return err
	}
	if err := rf.apply(b); err != nil {
		return err
	}

	m := b.Finish()
	if err := m.Validate(); err != nil {
		return fmt.Errorf("built map is invalid: %w", err)
	}
	if err := handoff.Publish(outPath, m); err != nil {
		return fmt.Errorf("failed to publish %s: %w", outPath, err)
	}

	if jsonOut {
		return printJSON(newMapReport(outPath, m))
	}

	s := loader.Summarize(m)
	printInfo("%s\n", styled(headerStyle, "Built "+outPath))
	printInfo("%s\n", numbers.Sprintf("  %d regions, %d pages usable of %d", s.Regions, s.UsablePages, s.TotalPages))
	printVerbose("%+v", m)

	return nil
}

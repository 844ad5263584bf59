package main

import (
	"fmt"

	"github.com/arloliu/physmap/handoff"
	"github.com/arloliu/physmap/loader"
	"github.com/arloliu/physmap/memmap"
	"github.com/spf13/cobra"
)

var dumpByType bool

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "List the regions of a memory map image",
		Long: `The dump command attaches a published map image read-only and lists its
regions in map order, followed by a summary.

Example:
  physmap dump boot.img
  physmap dump boot.img --by-type
  physmap dump boot.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}

	cmd.Flags().BoolVar(&dumpByType, "by-type", false, "Show page totals per memory type")

	return cmd
}

func runDump(args []string) error {
	path := args[0]

	r, err := handoff.Attach(path)
	if err != nil {
		return fmt.Errorf("failed to attach %s: %w", path, err)
	}
	defer r.Close()

	m := r.Map()
	logger.Debug("attached map image", "path", path, "regions", m.Len())

	if jsonOut {
		return printJSON(newMapReport(path, m))
	}

	printDump(path, m)

	return nil
}

func printDump(path string, m *memmap.Map) {
	printInfo("%s\n", styled(headerStyle, fmt.Sprintf("%s: %d/%d regions", path, m.Len(), memmap.Capacity)))
	for i, d := range m.All() {
		printInfo("%3d: %s\n", i, styled(typeStyle(d.Type), d.String()))
	}

	s := loader.Summarize(m)
	printInfo("\n")
	printInfo("%s\n", numbers.Sprintf("Total:   %d pages", s.TotalPages))
	printInfo("%s\n", numbers.Sprintf("Usable:  %d pages (%d bytes)", s.UsablePages, s.UsableBytes()))
	printInfo("Highest: %#x\n", s.HighestEnd)

	if dumpByType {
		printInfo("\n")
		for _, t := range s.Types() {
			printInfo("%s\n", numbers.Sprintf("  %-20s %12d pages", t.String(), s.PagesByType[t]))
		}
	}
}

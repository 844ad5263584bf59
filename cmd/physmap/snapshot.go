package main

import (
	"fmt"
	"os"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/handoff"
	"github.com/arloliu/physmap/snapshot"
	"github.com/spf13/cobra"
)

var (
	snapshotCompression string
	snapshotBigEndian   bool
)

func init() {
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newRestoreCmd())
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <image> <out.snap>",
		Short: "Write a portable, checksummed snapshot of a map image",
		Long: `The snapshot command wraps a map image in a self-describing envelope with
an explicit byte order, optional compression and an xxHash64 checksum.

Example:
  physmap snapshot boot.img boot.snap
  physmap snapshot boot.img boot.snap --compression s2 --big-endian`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(args)
		},
	}

	cmd.Flags().StringVarP(&snapshotCompression, "compression", "c", "zstd",
		"Payload compression (none, zstd, s2, lz4)")
	cmd.Flags().BoolVar(&snapshotBigEndian, "big-endian", false, "Encode the image in big-endian byte order")

	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <in.snap> <out.img>",
		Short: "Restore a map image from a snapshot",
		Long: `The restore command verifies a snapshot and publishes the map it holds as
a host byte order image.

Example:
  physmap restore boot.snap boot.img`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(args)
		},
	}
}

type snapshotResult struct {
	Path        string `json:"path"`
	Compression string `json:"compression"`
	ByteOrder   string `json:"byte_order"`
	Regions     uint64 `json:"regions"`
	ImageBytes  uint32 `json:"image_bytes"`
	StoredBytes int    `json:"stored_bytes"`
	Checksum    string `json:"checksum"`
}

func newSnapshotResult(path string, h snapshot.Header, stored int) snapshotResult {
	return snapshotResult{
		Path:        path,
		Compression: h.Compression.String(),
		ByteOrder:   endian.Name(h.Engine()),
		Regions:     h.RegionCount,
		ImageBytes:  h.ImageLength,
		StoredBytes: stored,
		Checksum:    fmt.Sprintf("%016x", h.Checksum),
	}
}

func runSnapshot(args []string) error {
	inPath, outPath := args[0], args[1]

	ct, err := format.ParseCompressionType(snapshotCompression)
	if err != nil {
		return err
	}

	r, err := handoff.Attach(inPath)
	if err != nil {
		return fmt.Errorf("failed to attach %s: %w", inPath, err)
	}
	defer r.Close()

	opts := []snapshot.Option{snapshot.WithCompression(ct)}
	if snapshotBigEndian {
		opts = append(opts, snapshot.WithBigEndian())
	}

	data, err := snapshot.Encode(r.Map(), opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}

	h, err := snapshot.ParseHeader(data)
	if err != nil {
		return err
	}
	logger.Debug("snapshot written", "path", outPath, "compression", ct.String(), "bytes", len(data))

	res := newSnapshotResult(outPath, h, len(data))
	if jsonOut {
		return printJSON(res)
	}
	printInfo("%s\n", styled(headerStyle, "Snapshot "+outPath))
	printInfo("%s\n", numbers.Sprintf("  %d regions, %s, %s-endian, %d -> %d bytes",
		res.Regions, res.Compression, res.ByteOrder, res.ImageBytes, res.StoredBytes))

	return nil
}

func runRestore(args []string) error {
	inPath, outPath := args[0], args[1]

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	m, h, err := snapshot.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", inPath, err)
	}
	if err := handoff.Publish(outPath, m); err != nil {
		return fmt.Errorf("failed to publish %s: %w", outPath, err)
	}

	if jsonOut {
		return printJSON(newSnapshotResult(inPath, h, len(data)))
	}
	printInfo("%s\n", styled(headerStyle, "Restored "+outPath))
	printInfo("  %d regions, checksum %016x\n", m.Len(), h.Checksum)

	return nil
}

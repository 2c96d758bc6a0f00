package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tilematch/codec"
	"github.com/hupe1980/tilematch/library"
)

type buildOptions struct {
	name        string
	tileSize    int
	mode        string
	compression string
	codec       string
	ascii       bool
}

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Build and inspect stored tile libraries",
	}
	cmd.AddCommand(newLibraryBuildCmd(a), newLibraryInspectCmd(a), newLibraryListCmd(a))
	return cmd
}

func newLibraryBuildCmd(a *app) *cobra.Command {
	o := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [DIR]",
		Short: "Build a tile library from an image directory and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if o.ascii == (len(args) == 1) {
				return errors.New("give either an image directory or --ascii")
			}
			c, ok := codec.ByName(o.codec)
			if !ok {
				return fmt.Errorf("%w: %q", library.ErrUnknownCodec, o.codec)
			}
			comp, err := codec.ParseCompression(o.compression)
			if err != nil {
				return err
			}

			var lib *library.Library
			if o.ascii {
				lib, err = library.ASCII(o.tileSize)
			} else {
				var mode library.Mode
				if mode, err = library.ParseMode(o.mode); err != nil {
					return err
				}
				lib, err = library.FromDir(ctx, os.DirFS(args[0]), ".", o.tileSize, mode,
					library.WithController(a.ctrl),
					library.WithLogger(a.logger.Logger),
				)
			}
			if err != nil {
				return err
			}

			store, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			if err := library.Save(ctx, store, o.name, lib, c, comp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d tiles (%dpx, %s) as %s\n",
				lib.Len(), lib.TileSize, lib.Mode(), o.name)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.name, "name", "", "library name in the store")
	f.IntVar(&o.tileSize, "tile-size", 8, "tile side in pixels")
	f.StringVar(&o.mode, "mode", "gray", "colour mode: gray or rgb")
	f.StringVar(&o.compression, "compression", "zstd", "payload compression: zstd, lz4 or none")
	f.StringVar(&o.codec, "codec", codec.Default.Name(), "payload codec: go-json, json or msgpack")
	f.BoolVar(&o.ascii, "ascii", false, "store the built-in ASCII glyph library")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLibraryInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect NAME",
		Short: "Show the header and shape of a stored library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			lib, h, err := library.Load(ctx, store, args[0],
				library.WithController(a.ctrl),
				library.WithLogger(a.logger.Logger),
			)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", args[0])
			fmt.Fprintf(w, "Format:\tv%d\n", h.Version)
			fmt.Fprintf(w, "Codec:\t%s\n", h.Codec)
			fmt.Fprintf(w, "Compression:\t%s\n", h.Compression)
			fmt.Fprintf(w, "Size:\t%d bytes\n", h.Size)
			fmt.Fprintf(w, "Checksum:\tcrc32c:%08x\n", h.Checksum)
			fmt.Fprintf(w, "Tiles:\t%d\n", lib.Len())
			fmt.Fprintf(w, "Tile size:\t%dpx\n", lib.TileSize)
			fmt.Fprintf(w, "Mode:\t%s\n", lib.Mode())
			return w.Flush()
		},
	}
}

func newLibraryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [PREFIX]",
		Short: "List stored libraries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, a.cfg.Store)
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := store.List(ctx, prefix)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

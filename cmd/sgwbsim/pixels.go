package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-sgwb/sky/healpix"
	"github.com/cwbudde/algo-sgwb/sky/skymap"
)

type pixelDirection struct {
	Pixel int     `yaml:"pixel"`
	Theta float64 `yaml:"theta"`
	Phi   float64 `yaml:"phi"`
}

type pixelInfo struct {
	Nside      int              `yaml:"nside"`
	Npix       int              `yaml:"npix"`
	Rings      int              `yaml:"rings"`
	PixelArea  float64          `yaml:"pixel_area_sr"`
	Directions []pixelDirection `yaml:"directions,omitempty"`
}

func newPixelsCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "pixels [nside ...]",
		Short: "Print pixelization properties for one or more resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"1", "2", "4", "8", "16"}
			}
			infos := make([]pixelInfo, 0, len(args))
			for _, a := range args {
				nside, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("nside %q: %w", a, err)
				}
				info, err := describe(nside, list)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return writeYAML(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "include every pixel direction")
	return cmd
}

func describe(nside int, list bool) (pixelInfo, error) {
	npix, err := healpix.Npix(nside)
	if err != nil {
		return pixelInfo{}, err
	}
	area, err := healpix.PixelArea(nside)
	if err != nil {
		return pixelInfo{}, err
	}
	rings, err := healpix.Rings(nside)
	if err != nil {
		return pixelInfo{}, err
	}

	info := pixelInfo{Nside: nside, Npix: npix, Rings: len(rings), PixelArea: area}
	if list {
		pixels, err := skymap.Pixels(nside)
		if err != nil {
			return pixelInfo{}, err
		}
		info.Directions = make([]pixelDirection, len(pixels))
		for i, p := range pixels {
			info.Directions[i] = pixelDirection{Pixel: i, Theta: p.Theta, Phi: p.Phi}
		}
	}
	return info, nil
}

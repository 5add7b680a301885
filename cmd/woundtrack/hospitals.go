package main

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zatekoja/woundtrack/internal/app"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/pkg/geo"
)

// locationFlags pick where a hospital query is centred.
type locationFlags struct {
	lat, lon string
	address  string
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lat, "lat", "", "Latitude (with --lon)")
	cmd.Flags().StringVar(&f.lon, "lon", "", "Longitude (with --lat)")
	cmd.Flags().StringVar(&f.address, "address", "", "Geocode this address instead of using the device position")
}

func (f *locationFlags) resolve(ctx context.Context, a *app.App) (*entities.Location, error) {
	switch {
	case f.address != "":
		return a.Locations.Lookup(ctx, f.address)
	case f.lat != "" || f.lon != "":
		lat, err := strconv.ParseFloat(f.lat, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --lat %q", f.lat)
		}
		lon, err := strconv.ParseFloat(f.lon, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --lon %q", f.lon)
		}
		return a.Locations.ResolveCoordinates(ctx, lat, lon)
	default:
		return a.Locations.Resolve(ctx)
	}
}

func (c *cli) hospitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "Find hospitals near you",
	}
	cmd.AddCommand(c.hospitalsNearbyCmd(), c.hospitalsSearchCmd(), c.hospitalsShowCmd(), c.hospitalsIndexCmd())
	return cmd
}

func (c *cli) hospitalsNearbyCmd() *cobra.Command {
	var loc locationFlags
	var radius float64
	var unbounded bool
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List hospitals within a radius, nearest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if radius < 0 || math.IsNaN(radius) {
				return fmt.Errorf("--radius must be a non-negative number")
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				center, err := loc.resolve(ctx, a)
				if err != nil {
					return err
				}
				r := radius
				if !cmd.Flags().Changed("radius") {
					r = a.Hospitals.Options().DefaultRadiusMiles
				}
				if unbounded {
					r = geo.Unbounded
				}
				hospitals, err := a.Hospitals.Nearby(ctx, *center, r)
				if err != nil {
					return err
				}
				return c.renderHospitals(cmd, center, hospitals)
			})
		},
	}
	loc.register(cmd)
	cmd.Flags().Float64Var(&radius, "radius", 0, "Radius in miles (default from DIRECTORY_DEFAULT_RADIUS_MILES)")
	cmd.Flags().BoolVar(&unbounded, "all", false, "Ignore the radius and list every hospital")
	return cmd
}

func (c *cli) hospitalsSearchCmd() *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the nearest hospitals by name, address or specialty",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				center, err := loc.resolve(ctx, a)
				if err != nil {
					return err
				}
				hospitals, err := a.Hospitals.Search(ctx, *center, query)
				if err != nil {
					return err
				}
				return c.renderHospitals(cmd, center, hospitals)
			})
		},
	}
	loc.register(cmd)
	return cmd
}

func (c *cli) hospitalsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one hospital",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				h, err := a.Hospitals.GetByID(ctx, args[0])
				if err != nil {
					return err
				}
				if c.jsonOut {
					return c.printJSON(cmd.OutOrStdout(), h)
				}
				printHospitals(cmd.OutOrStdout(), []*entities.Hospital{h})
				return nil
			})
		},
	}
}

func (c *cli) hospitalsIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Push the hospital directory to the search backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Hospitals.Reindex(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d hospitals\n", n)
				return nil
			})
		},
	}
}

func (c *cli) locationCmd() *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Show the resolved location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				l, err := loc.resolve(ctx, a)
				if err != nil {
					return err
				}
				if c.jsonOut {
					return c.printJSON(cmd.OutOrStdout(), l)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatLocation(l))
				return nil
			})
		},
	}
	loc.register(cmd)
	return cmd
}

func (c *cli) renderHospitals(cmd *cobra.Command, center *entities.Location, hospitals []*entities.Hospital) error {
	if c.jsonOut {
		return c.printJSON(cmd.OutOrStdout(), struct {
			Location  *entities.Location   `json:"location"`
			Hospitals []*entities.Hospital `json:"hospitals"`
		}{center, hospitals})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Near %s\n", formatLocation(center))
	printHospitals(cmd.OutOrStdout(), hospitals)
	return nil
}

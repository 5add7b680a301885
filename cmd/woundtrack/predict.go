package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zatekoja/woundtrack/internal/app"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

func (c *cli) predictCmd() *cobra.Command {
	var contentType string
	var withHospitals bool
	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Upload a wound photo and classify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			image := &entities.ImageUpload{
				Filename:    filepath.Base(args[0]),
				ContentType: contentType,
				Data:        data,
			}

			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.Auth.Current(ctx)
				if err != nil {
					return err
				}
				prediction, submitErr := a.Predictions.Submit(ctx, image, s.User.ID)
				if prediction == nil {
					return submitErr
				}

				var hospitals []*entities.Hospital
				if withHospitals && prediction.RequiresHospital != nil && *prediction.RequiresHospital {
					if loc, err := a.Locations.Resolve(ctx); err == nil {
						hospitals, _ = a.Hospitals.Nearest(ctx, *loc, a.Hospitals.Options().NearestLimit)
					}
				}

				if c.jsonOut {
					if err := c.printJSON(cmd.OutOrStdout(), struct {
						Prediction *entities.Prediction `json:"prediction"`
						Hospitals  []*entities.Hospital `json:"hospitals,omitempty"`
					}{prediction, hospitals}); err != nil {
						return err
					}
				} else {
					printPrediction(cmd.OutOrStdout(), prediction)
					if len(hospitals) > 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "\nNearest hospitals:")
						printHospitals(cmd.OutOrStdout(), hospitals)
					}
				}
				// An unsaved prediction is still shown before reporting the failure.
				return submitErr
			})
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "Image MIME type (detected when empty)")
	cmd.Flags().BoolVar(&withHospitals, "hospitals", true, "List nearby hospitals when care is recommended")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "history [prediction-id]",
		Short: "List past predictions, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.Auth.Current(ctx)
				if err != nil {
					return err
				}

				if len(args) == 1 {
					p, err := a.History.Get(ctx, args[0])
					if err != nil {
						return err
					}
					if c.jsonOut {
						return c.printJSON(cmd.OutOrStdout(), p)
					}
					printPrediction(cmd.OutOrStdout(), p)
					return nil
				}

				userID := s.User.ID
				if all {
					userID = ""
				}
				records, err := a.History.List(ctx, userID)
				if err != nil {
					return err
				}
				if c.jsonOut {
					return c.printJSON(cmd.OutOrStdout(), records)
				}
				printHistory(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include predictions from every user")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the classification service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				status, err := a.Predictions.Health(ctx)
				out := struct {
					Status     string `json:"status"`
					Classifier string `json:"classifier,omitempty"`
					Breaker    string `json:"breaker"`
				}{Status: "ok", Classifier: status, Breaker: a.Classifier.State()}
				if err != nil {
					out.Status = "degraded"
				}
				if c.jsonOut {
					if perr := c.printJSON(cmd.OutOrStdout(), out); perr != nil {
						return perr
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (classifier: %s, breaker: %s)\n", out.Status, valueOr(out.Classifier, "unreachable"), out.Breaker)
				}
				return err
			})
		},
	}
}

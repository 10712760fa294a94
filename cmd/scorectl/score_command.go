package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var vin, date, features string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one feature window and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if features == "" {
				return errors.New("--features is required")
			}

			svc, err := ctx.services(cmd.Context())
			if err != nil {
				return err
			}

			result, err := svc.scorer.Score(cmd.Context(), vin, date, features)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", result.RequestID, result.PredictedProbability)
			return nil
		},
	}

	cmd.Flags().StringVar(&vin, "vin", "", "Vehicle identification number")
	cmd.Flags().StringVar(&date, "date", "", "Date of the last observation")
	cmd.Flags().StringVar(&features, "features", "", "84 comma-separated feature values")

	return cmd
}

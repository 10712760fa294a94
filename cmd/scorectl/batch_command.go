package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"battery-alarm-predictor/src/batch"

	"github.com/spf13/cobra"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var file, bucket, key string
	var strict bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every line of a batch CSV file",
		Long:  "Score a local file (--file) or an object in the infer bucket (--key). Failed lines are reported in the summary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (key == "") {
				return errors.New("exactly one of --file or --key is required")
			}

			svc, err := ctx.services(cmd.Context())
			if err != nil {
				return err
			}

			var summary batch.Summary
			if file != "" {
				summary, err = svc.batch.ProcessFile(cmd.Context(), file)
			} else {
				if bucket == "" {
					bucket = svc.inferBucket
				}
				summary, err = svc.batch.ProcessObject(cmd.Context(), bucket, key)
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(summary); err != nil {
				return err
			}

			if strict && summary.Failed > 0 {
				return fmt.Errorf("%s: %w", summary, summary.Err())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Local batch file")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket holding --key (defaults to INFER_BUCKET_NAME)")
	cmd.Flags().StringVar(&key, "key", "", "Object key of the batch file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any line fails")

	return cmd
}

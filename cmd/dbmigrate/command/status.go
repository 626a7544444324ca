// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/momeni/dbmigrate/pkg/core/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the migration watermark with the registered steps",
	Long: `Compare the largest applied migration number with the
registered steps and print the result as a JSON document. The state is
one of FRESH_INSTALL, UP_TO_DATE, REQUIRES_UPGRADE, or
REQUIRES_DOWNGRADE. The database is not modified.`,
	RunE: status,
	Args: cobra.NoArgs,
}

func status(cmd *cobra.Command, _ []string) (err error) {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close())
	}()
	st, err := a.uc.Status(ctx)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), st)
}

var stepsFrom int64

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the registered migration steps",
	Long: `List the registered migration steps, in the ascending order
of their numbers, as a JSON document. Steps with smaller numbers than
the --from flag are skipped.`,
	RunE: steps,
	Args: cobra.NoArgs,
}

func steps(cmd *cobra.Command, _ []string) (err error) {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.close())
	}()
	var ss []model.RegisteredStep
	if stepsFrom > 0 {
		ss = a.uc.Steps().ReadFrom(stepsFrom)
	} else {
		ss = a.uc.Steps().ReadAll()
	}
	return writeJSON(cmd.OutOrStdout(), ss)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func init() {
	stepsCmd.Flags().Int64Var(&stepsFrom, "from", 0, "smallest listed step number")
	rootCmd.AddCommand(statusCmd, stepsCmd)
}

// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/lakewriter/config"
	"github.com/cardinalhq/lakewriter/internal/awsclient"
	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/cloudstorage"
	"github.com/cardinalhq/lakewriter/internal/idgen"
	"github.com/cardinalhq/lakewriter/internal/logctx"
	"github.com/cardinalhq/lakewriter/internal/schema"
	"github.com/cardinalhq/lakewriter/internal/writer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write one batch of telemetry rows",
		Long:  `Read a JSON array of rows, encode it as one Parquet file, and write it via the configured writer.`,
		RunE: func(c *cobra.Command, _ []string) error {
			signalName, err := c.Flags().GetString("signal")
			if err != nil {
				return err
			}
			metricType, err := c.Flags().GetString("metric-type")
			if err != nil {
				return err
			}
			input, err := c.Flags().GetString("input")
			if err != nil {
				return err
			}
			return runWrite(signalName, metricType, input)
		},
	}

	cmd.Flags().String("signal", "", "Signal kind: logs, metrics, or traces")
	cmd.Flags().String("metric-type", "", "Metric type for --signal=metrics: gauge, sum, histogram, exponential_histogram, or summary")
	cmd.Flags().String("input", "-", "Path to a JSON array of row objects, or - for stdin")
	_ = cmd.MarkFlagRequired("signal")

	rootCmd.AddCommand(cmd)
}

func runWrite(signalName, metricType, input string) error {
	servicename := "lakewriter-write"
	doneCtx, doneFx, err := setupTelemetry(servicename, nil)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer func() {
		if err := doneFx(); err != nil {
			slog.Error("Error shutting down telemetry", slog.Any("error", err))
		}
	}()

	opID := idgen.NewULIDGenerator().Make(time.Now())
	ll := slog.Default().With(
		slog.String("action", "write"),
		slog.String("operationID", opID),
	)
	ctx := logctx.WithLogger(doneCtx, ll)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	signal, err := schema.ParseSignal(signalName)
	if err != nil {
		return err
	}

	rows, err := readRows(input)
	if err != nil {
		return err
	}

	managers, err := cloudstorage.NewManagers(ctx,
		awsclient.WithAssumeRoleSessionName("lakewriter"))
	if err != nil {
		return fmt.Errorf("failed to create storage managers: %w", err)
	}

	w, err := writer.NewWriter(ctx, cfg.Writer, managers)
	if err != nil {
		return err
	}
	if c, ok := w.(interface{ Close() }); ok {
		defer c.Close()
	}

	b := batch.New(schema.SchemaTag(signal, metricType), rows)
	res, err := w.Write(ctx, signal, metricType, b)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"committed": res.Committed,
		"state":     res.State,
		"table":     res.Table,
		"path":      res.Path,
		"rows":      res.RowCount,
		"bytes":     res.FileSizeBytes,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// readRows decodes a JSON array of objects from a file or stdin.
func readRows(input string) ([]batch.Row, error) {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var rows []batch.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("input must be a JSON array of row objects: %w", err)
	}
	return rows, nil
}

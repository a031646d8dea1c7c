// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/talentsift/resume-extract/internal/export"
	"github.com/talentsift/resume-extract/internal/pipeline"
	"github.com/talentsift/resume-extract/internal/server"
	"github.com/talentsift/resume-extract/internal/tool"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the contact fields of one resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			res := a.extractor.ExtractCandidate(cmd.Context(), path, filepath.Base(path))
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "batch <file|dir|zip>...",
		Short: "Extract and deduplicate a batch of resumes",
		Long: "Extract the contact fields of every resume named on the command line. " +
			"Directories contribute their files, zip archives their supported entries. " +
			"The batch report is printed as JSON; --out also writes it as .csv or .xlsx.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" {
				switch strings.ToLower(filepath.Ext(out)) {
				case ".csv", ".xlsx":
				default:
					return fmt.Errorf("--out must end in .csv or .xlsx, got %q", out)
				}
			}

			tmp, err := os.MkdirTemp("", "resume-extract-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmp)

			inputs, err := collectInputs(args, tmp, a.cfg.MaxFileSize)
			if err != nil {
				return err
			}
			report, err := a.extractor.ExtractBatch(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			if out != "" {
				if err := writeReport(out, report.Candidates); err != nil {
					return err
				}
				a.logger.Info("cli.batch.exported", "path", out, "rows", len(report.Candidates))
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to a .csv or .xlsx file")
	return cmd
}

// collectInputs expands directories and zip archives into batch inputs.
// Unsupported files are passed through so the batch can report them.
func collectInputs(args []string, tmp string, limit int64) ([]pipeline.Input, error) {
	var inputs []pipeline.Input
	for i, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		switch {
		case info.IsDir():
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if e.Type().IsRegular() {
					inputs = append(inputs, pipeline.Input{Path: filepath.Join(arg, e.Name()), FileName: e.Name()})
				}
			}
		case strings.EqualFold(filepath.Ext(arg), ".zip"):
			expanded, err := expandZipFile(arg, filepath.Join(tmp, fmt.Sprintf("%03d", i)), limit)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, expanded...)
		default:
			inputs = append(inputs, pipeline.Input{Path: arg, FileName: filepath.Base(arg)})
		}
	}
	return inputs, nil
}

func expandZipFile(path, dir string, limit int64) ([]pipeline.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	inputs, err := pipeline.ExpandZip(f, info.Size(), dir, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inputs, nil
}

func writeReport(path string, results []*pipeline.Result) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err := export.XLSX(results)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcp.NewServer(&mcp.Implementation{
				Name:    "resume-extract",
				Version: version,
			}, nil)
			tool.New(a.extractor).Register(srv)

			a.logger.Info("mcp.serve", "transport", "stdio")
			return srv.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

func newHTTPCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the upload and export API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			s := server.New(server.Config{
				Extractor:   a.extractor,
				Lexicon:     a.lexicon,
				MaxFileSize: a.cfg.MaxFileSize,
				Logger:      a.logger,
			})
			return s.Listen(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http_addr from the config)")
	return cmd
}

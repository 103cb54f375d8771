package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/coachreports/core/transfer"
)

func (cli *commandLine) admissionCmd() *cobra.Command {
	var (
		req       transfer.AdmissionRequest
		available int64
		nodesPath string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "admission",
		Short: "Check whether a transfer fits on the content volume",
		Long: "Check whether a transfer fits on the content volume.\n" +
			"The selection is either given by --size and --count or measured from a YAML list of nodes (--nodes).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			if cmd.Flags().Changed("available") {
				req.AvailableSpace = &available
			}
			if nodesPath != "" {
				nodes, err := readNodes(nodesPath)
				if err != nil {
					return err
				}
				req.Nodes = nodes
			}
			if err := req.Validate(cli.validate); err != nil {
				return cli.validationError(err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			state, err := cli.transferSvc.Check(ctx, req)
			if err != nil {
				return err
			}
			return writeAdmission(cli.out, output, state)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&req.CandidateSize, "size", 0, "candidate transfer size, in bytes")
	f.IntVar(&req.SelectionCount, "count", 0, "number of selected resources")
	f.Int64Var(&available, "available", 0, "available space, in bytes (default: free space of the content directory)")
	f.StringVar(&nodesPath, "nodes", "", "YAML file listing the selected content nodes")
	f.StringVarP(&output, "output", "o", outputTable, "table | yaml | json")
	return cmd
}

func readNodes(path string) ([]transfer.ContentNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading nodes")
	}
	var nodes []transfer.ContentNode
	if err = yaml.Unmarshal(data, &nodes); err != nil {
		return nil, errors.Wrapf(err, "decoding nodes %s", path)
	}
	return nodes, nil
}

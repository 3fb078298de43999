package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	json "github.com/goccy/go-json"

	"github.com/compozy/reflow/engine/reflow"
	"github.com/compozy/reflow/internal/loader"
	"github.com/compozy/reflow/internal/verify"
	"github.com/compozy/reflow/pkg/logger"
)

// RunCmd builds `reflow run`: load an input payload, reflow it, write the
// output payload.
func RunCmd() *cobra.Command {
	var in, out, selectPath string
	var doVerify, doPretty bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reflow a schedule from an input payload to an output payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReflow(cmd, in, out, selectPath, doVerify, doPretty)
		},
	}

	cmd.Flags().StringVar(&in, "in", "-", "Input payload path (- for stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "Output payload path (- for stdout)")
	cmd.Flags().StringVar(&selectPath, "select", "", "Print only this gjson path of the output payload")
	cmd.Flags().BoolVar(&doVerify, "verify", false, "Re-check the output against the invariants internal/verify checks (all but idempotence) before writing it")
	cmd.Flags().BoolVar(&doPretty, "pretty", true, "Pretty-print JSON output")
	return cmd
}

func runReflow(cmd *cobra.Command, in, out, selectPath string, doVerify, doPretty bool) error {
	log := logger.FromContext(cmd.Context())

	src, err := openInput(in)
	if err != nil {
		return err
	}
	defer src.Close()

	payload, err := loader.LoadPayload(src)
	if err != nil {
		return err
	}
	if err := loader.Validate(payload); err != nil {
		return err
	}
	log.Info("loaded input payload", "workOrders", len(payload.WorkOrders), "workCenters", len(payload.WorkCenters))

	input, err := loader.ToEngineInput(payload)
	if err != nil {
		return err
	}

	result, err := reflow.Reflow(cmd.Context(), input)
	if err != nil {
		return err
	}
	log.Info("reflow complete", "changes", len(result.Changes))

	if doVerify {
		violations := verify.Check(input.WorkOrders, input.WorkCenters, result)
		for _, v := range violations {
			log.Warn("invariant violation", "detail", v.String())
		}
		if len(violations) > 0 {
			return fmt.Errorf("output violates %d invariant(s); see warnings above", len(violations))
		}
	}

	output, err := loader.FromResult(payload.WorkOrders, result)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(output)
	if err != nil {
		return err
	}
	if doPretty {
		raw = pretty.Pretty(raw)
	}
	if selectPath != "" {
		raw = []byte(gjson.GetBytes(raw, selectPath).Raw)
	}

	return writeOutput(out, raw)
}

func openInput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

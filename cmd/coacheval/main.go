//
// Copyright (C) 2025 Flow Coach authors. All rights reserved.
//
// coacheval is licensed under the Apache License Version 2.0.
//
//

// Command coacheval runs a coaching agent against a corpus of test cases
// and reports metric verdicts per case.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flowcoach/coacheval"
	"github.com/flowcoach/coacheval/bridge"
	"github.com/flowcoach/coacheval/evalresult"
	evalresultlocal "github.com/flowcoach/coacheval/evalresult/local"
	judgeopenai "github.com/flowcoach/coacheval/judge/openai"
	"github.com/flowcoach/coacheval/log"
	"github.com/flowcoach/coacheval/status"
	"github.com/flowcoach/coacheval/testcase"
)

var (
	casesPath   string
	outputDir   string
	runnerCmd   []string
	workDir     string
	timeout     time.Duration
	judgeModel  string
	parallelism int
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "coacheval",
	Short: "Evaluation harness for the coaching agent",
	Long: `coacheval feeds test cases to the coaching agent runtime over a
subprocess bridge, scores the returned transcripts with tool-correctness
and LLM-judged quality metrics, and stores a run report per invocation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(logLevel)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the corpus and print a run summary",
	RunE:  runEvaluation,
}

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the test cases in the corpus without running them",
	RunE:  listCases,
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&casesPath, "cases",
		"tests/coach-evaluation/test_cases.json", "Path to the test case corpus file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")

	runCmd.Flags().StringVar(&outputDir, "output", "./results",
		"Directory where run reports are stored")
	runCmd.Flags().StringSliceVar(&runnerCmd, "runner", nil,
		"Runtime command and leading arguments invoked per case (default npx tsx runner)")
	runCmd.Flags().StringVar(&workDir, "workdir", "",
		"Working directory for the runtime process")
	runCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute,
		"Per-case runtime timeout (0 disables)")
	runCmd.Flags().StringVar(&judgeModel, "model", judgeopenai.DefaultModel,
		"Judge model used for quality metrics")
	runCmd.Flags().IntVar(&parallelism, "parallelism", 0,
		"Number of cases evaluated concurrently (0 runs sequentially)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(casesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEvaluation(cmd *cobra.Command, args []string) error {
	bridgeOpts := []bridge.Option{bridge.WithTimeout(timeout)}
	if len(runnerCmd) > 0 {
		bridgeOpts = append(bridgeOpts,
			bridge.WithCommand(runnerCmd[0], runnerCmd[1:]...))
	}
	if workDir != "" {
		bridgeOpts = append(bridgeOpts, bridge.WithWorkDir(workDir))
	}
	source, err := testcase.NewFileSource(casesPath)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	evaluator, err := coacheval.New(
		bridge.New(bridgeOpts...),
		source,
		coacheval.WithJudge(judgeopenai.New(judgeopenai.WithModel(judgeModel))),
		coacheval.WithResultManager(evalresultlocal.New(evalresultlocal.WithBaseDir(outputDir))),
		coacheval.WithParallelism(parallelism),
	)
	if err != nil {
		return fmt.Errorf("create evaluator: %w", err)
	}
	defer evaluator.Close()

	result, err := evaluator.Evaluate(cmd.Context())
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	printSummary(result)
	if result.Status == status.EvalStatusFailed {
		os.Exit(1)
	}
	return nil
}

func listCases(cmd *cobra.Command, args []string) error {
	source, err := testcase.NewFileSource(casesPath)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	cases, err := source.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load cases: %w", err)
	}
	fmt.Printf("%d test case(s) in %s\n\n", len(cases), casesPath)
	for _, tc := range cases {
		fmt.Printf("Case %s (%s)\n", tc.ID, tc.Type)
		if tc.Description != "" {
			fmt.Printf("  %s\n", tc.Description)
		}
		if tc.HasToolExpectations() {
			names := make([]string, 0, len(tc.Expectations.ToolUsage))
			for _, call := range tc.Expectations.ToolUsage {
				names = append(names, call.Name)
			}
			fmt.Printf("  Expected tools: %v\n", names)
		}
		if tc.HasQualityExpectations() {
			fmt.Printf("  Quality threshold: %.2f (%d criteria)\n",
				tc.Expectations.CoachingQuality.Threshold,
				len(tc.Expectations.CoachingQuality.Criteria))
		}
		fmt.Println()
	}
	return nil
}

func printSummary(result *evalresult.RunResult) {
	fmt.Println("Evaluation completed")
	fmt.Printf("Run: %s\n", result.RunID)
	fmt.Printf("Overall Status: %s\n", result.Status.String())
	fmt.Printf("Cases: %d\n\n", len(result.CaseResults))

	for _, caseResult := range result.CaseResults {
		fmt.Printf("Case %s -> %s\n", caseResult.CaseID, caseResult.Status.String())
		if caseResult.ErrorMessage != "" {
			fmt.Printf("  Error: %s\n", caseResult.ErrorMessage)
		}
		for _, verdict := range caseResult.MetricVerdicts {
			fmt.Printf("  Metric %s: score %.2f (threshold %.2f) => %s\n",
				verdict.MetricName,
				verdict.Score,
				verdict.Threshold,
				verdict.Status.String(),
			)
			if verdict.Reason != "" && verdict.Status != status.EvalStatusPassed {
				fmt.Printf("    %s\n", verdict.Reason)
			}
		}
		fmt.Println()
	}
	fmt.Printf("Reports saved under: %s\n", outputDir)
}

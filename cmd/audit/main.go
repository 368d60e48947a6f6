package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"sentra/backend/internal/logging"
	"sentra/backend/pkg/models"
)

// audit is a small client for a running Sentra server: it posts workflow
// steps to /analyze and prints the assessments.
func main() {
	logger := logging.NewLogger()

	addr := flag.String("addr", "http://localhost:8000", "Base URL of the Sentra server")
	file := flag.String("file", "", "Path to a file with one workflow step per line")
	mock := flag.Bool("mock", false, "Answer from the static table instead of the model backend")
	flag.Parse()

	steps := flag.Args()
	if *file != "" {
		fileSteps, err := readSteps(*file)
		if err != nil {
			log.Fatalf("Failed to read steps file: %v", err)
		}
		steps = append(steps, fileSteps...)
	}
	if len(steps) == 0 {
		log.Fatal("No steps given; pass steps as arguments or via -file")
	}

	requestBody, err := json.Marshal(models.WorkflowRequest{
		Steps:   steps,
		UseMock: *mock,
	})
	if err != nil {
		log.Fatalf("Failed to marshal request: %v", err)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(*addr+"/analyze", "application/json", bytes.NewBuffer(requestBody))
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Detail string `json:"detail"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		log.Fatalf("Server returned %d: %s", resp.StatusCode, errBody.Detail)
	}

	var results []models.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}

	for i, r := range results {
		fmt.Printf("%d. [%s] %s\n", i+1, strings.ToUpper(r.Risk), r.Step)
		fmt.Printf("   recommendation: %s\n", r.Recommendation)
		fmt.Printf("   reason:         %s\n", r.Reason)
		if len(r.RiskTypes) > 0 {
			fmt.Printf("   risk types:     %s\n", strings.Join(r.RiskTypes, ", "))
		}
		if r.SuggestedReviewer != "" {
			fmt.Printf("   reviewer:       %s\n", r.SuggestedReviewer)
		}
		if r.RewrittenStep != "" {
			fmt.Printf("   rewrite:        %s\n", r.RewrittenStep)
		}
	}

	logger.Info("Audit complete", "steps", len(results))
}

func readSteps(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var steps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			steps = append(steps, line)
		}
	}
	return steps, scanner.Err()
}

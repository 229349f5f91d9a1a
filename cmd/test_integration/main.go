// Command test_integration smoke-tests a running server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health check...")
	if _, ok := sendRequest(baseURL, http.MethodGet, "/healthz", nil); !ok {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Deduplicating contacts...")
	payload := map[string]any{
		"contacts": []map[string]any{
			{"name": "John Smith", "phones": []map[string]string{{"number": "+12025550123", "type": "CELL"}}},
			{"name": "John Smith", "phones": []map[string]string{{"number": "(202) 555-0123", "type": "CELL"}}},
			{"name": "Jon Smith"},
			{"name": "ICE - Mom", "phones": []map[string]string{{"number": "+13125550199"}}},
			{"name": "ICE - Mom", "phones": []map[string]string{{"number": "+13125550199"}}},
		},
	}
	body, ok := sendRequest(baseURL, http.MethodPost, "/dedupe", payload)
	if !ok {
		fmt.Println("FAILED: Dedupe")
		os.Exit(1)
	}

	var out struct {
		Stats struct {
			DuplicateGroups int `json:"duplicate_groups"`
			FinalContacts   int `json:"final_contacts"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		fmt.Printf("FAILED: Dedupe response: %v\n", err)
		os.Exit(1)
	}
	if out.Stats.DuplicateGroups != 1 || out.Stats.FinalContacts != 3 {
		fmt.Printf("FAILED: expected 1 group and 3 contacts, got %d and %d\n",
			out.Stats.DuplicateGroups, out.Stats.FinalContacts)
		os.Exit(1)
	}
	fmt.Println("PASSED: Dedupe")
}

func sendRequest(baseURL, method, endpoint string, payload any) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response Status: %s\n", resp.Status)
	fmt.Printf("Response Body: %s\n", respBody)

	return respBody, resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Command simulation registers a fresh user against a running server and fires
// concurrent chat requests at it, then reports how many were answered and how
// many were refused for quota. A new account has 10 messages, so exactly 10
// requests should succeed whatever the concurrency.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Simplified DTOs for the script
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type chatRequest struct {
	Question string `json:"question"`
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:5000/api/v1", "API base URL")
	requests := flag.Int("requests", 25, "number of chat requests")
	concurrency := flag.Int("concurrency", 25, "parallel requests")
	flag.Parse()

	color.Cyan("=== Quota Simulation Client ===")

	email := fmt.Sprintf("sim-%s@example.com", uuid.NewString()[:8])
	token, err := signUp(*baseURL, email)
	if err != nil {
		log.Fatalf("Failed to sign up: %v", err)
	}
	fmt.Printf("Signed up as %s\n", email)

	statuses := make(map[int]int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency)

	start := time.Now()
	for i := 0; i < *requests; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			status, err := post(*baseURL+"/chat", token, chatRequest{Question: fmt.Sprintf("Question #%d", i+1)}, nil)
			if err != nil && status == 0 {
				log.Printf("request %d: %v", i+1, err)
			}
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	codes := make([]int, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	fmt.Printf("\n%d requests in %v\n", *requests, elapsed)
	for _, code := range codes {
		line := fmt.Sprintf("  %4d: %d", code, statuses[code])
		switch code {
		case http.StatusOK:
			color.Green(line)
		case http.StatusPaymentRequired:
			color.Yellow(line)
		default:
			color.Red(line)
		}
	}

	if statuses[http.StatusOK] > 10 {
		color.Red("Quota was overcharged: %d answers for a 10 message bundle", statuses[http.StatusOK])
	}
}

func signUp(baseURL, email string) (string, error) {
	if _, err := post(baseURL+"/users/register-user", "", registerRequest{Email: email, Name: "Simulation", Password: "password123"}, nil); err != nil {
		return "", err
	}

	var res loginResponse
	if _, err := post(baseURL+"/users/login", "", loginRequest{Email: email, Password: "password123"}, &res); err != nil {
		return "", err
	}
	return res.Data.AccessToken, nil
}

// post sends a JSON body. Non-2xx answers are returned as errors only when out is set.
func post(url, token string, body interface{}, out interface{}) (int, error) {
	jsonBytes, _ := json.Marshal(body)

	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		if out != nil || resp.StatusCode != http.StatusPaymentRequired {
			return resp.StatusCode, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(raw))
		}
		return resp.StatusCode, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

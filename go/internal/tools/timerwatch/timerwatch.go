// timerwatch tails one group's timers in the terminal. It seeds from a full
// fetch against the API, subscribes the group's broadcast topic, and redraws
// the remaining times on every tick.
//
// Usage:
//
//	go run ./go/internal/tools/timerwatch -group 3F8K2M9QX4JD -member dev-alice
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/grouptick/grouptick/go/clients/identity"
	"github.com/grouptick/grouptick/go/internal/broadcast"
	"github.com/grouptick/grouptick/go/internal/models"
	"github.com/grouptick/grouptick/go/internal/sync"
)

type groupPayload struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Timers []models.Timer `json:"timers"`
}

type apiEnvelope struct {
	Success bool          `json:"success"`
	Data    *groupPayload `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		apiURL   = flag.String("api", envOr("API_URL", "http://localhost:8080"), "API base URL")
		natsURL  = flag.String("nats", envOr("NATS_URL", "nats://localhost:4222"), "NATS server URL")
		groupID  = flag.String("group", "", "group code to watch")
		memberID = flag.String("member", "", "member ID to act as")
	)
	flag.Parse()

	if *groupID == "" || *memberID == "" {
		fmt.Fprintln(os.Stderr, "usage: timerwatch -group <code> -member <id>")
		os.Exit(1)
	}

	// 1) Seed from a full fetch
	group, err := fetchGroup(*apiURL, *groupID, *memberID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch group: %v\n", err)
		os.Exit(1)
	}

	// 2) Subscribe the group topic
	cfg := broadcast.DefaultConfig()
	cfg.URL = *natsURL
	conn, err := broadcast.Connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect broadcast: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	view, err := sync.OpenView(*groupID, group.Timers, conn, clockwork.NewRealClock(), renderTerminal(group.Name), func(t models.Timer) {
		fmt.Printf("\a* %s is done\n", t.Label)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open view: %v\n", err)
		os.Exit(1)
	}
	defer view.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println()
}

func fetchGroup(apiURL, groupID, memberID string) (*groupPayload, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(apiURL, "/")+"/groups/"+groupID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(identity.CallerHeader, memberID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || env.Data == nil {
		if env.Error != nil {
			return nil, fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return env.Data, nil
}

// renderTerminal rewrites the timer list in place using ANSI cursor moves
func renderTerminal(groupName string) sync.RenderFunc {
	lines := 0
	return func(timers []models.Timer, states []models.TimerState) {
		if lines > 0 {
			fmt.Printf("\033[%dA", lines)
		}

		fmt.Printf("\033[K%s\n", groupName)
		for i, t := range timers {
			marker := " "
			switch {
			case states[i].Completed:
				marker = "!"
			case t.Paused():
				marker = "="
			}
			fmt.Printf("\033[K %s %-20s %s\n", marker, t.Label, formatRemaining(states[i].Display()))
		}
		lines = len(timers) + 1
	}
}

func formatRemaining(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

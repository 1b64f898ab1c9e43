package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"ai-scheduler-be/internal/config"
	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/internal/repository/memory"
	"ai-scheduler-be/internal/service"
	"ai-scheduler-be/pkg/ai/fallback"
	"ai-scheduler-be/pkg/intent/classifier"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/llm"
	"ai-scheduler-be/pkg/llm/factory"
	"ai-scheduler-be/pkg/pending"

	"github.com/fatih/color"
)

var seedContacts = []extract.Contact{
	{ID: "c1", Name: "田中 太郎", Email: "taro@example.com"},
	{ID: "c2", Name: "田中 花子", Email: "hanako@example.com"},
	{ID: "c3", Name: "佐藤 一郎", Email: "sato@example.com"},
	{ID: "c4", Name: "Alice Johnson", Email: "alice@example.com"},
}

func main() {
	userID := flag.String("user", "demo-user", "user id owning the global pending slot")
	thread := flag.String("thread", "thread-1", "initially selected thread (empty for none)")
	useLLM := flag.Bool("llm", false, "enable the model fallback using LLM_* settings")
	flag.Parse()

	cfg := config.Load()

	contacts := memory.NewContactRepository()
	contacts.Seed(*userID, seedContacts)

	var router *fallback.Router
	if *useLLM {
		provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.HuggingFaceKey)
		if err != nil {
			color.Red("LLM provider: %v", err)
			os.Exit(1)
		}
		if provider != nil {
			router = fallback.NewRouter(fallback.FromProvider(provider, llm.WithJSON()), fallback.DefaultConfig(), logger.NewNopLogger())
		}
	}

	svc := service.NewIntentService(service.IntentServiceDeps{
		Store:    pending.NewMemoryStore(time.Hour, 10*time.Minute),
		Router:   router,
		Contacts: contacts,
	})

	color.Cyan("=== Scheduling Intent Console ===")
	fmt.Println("Commands: /thread <id>, /thread (no thread), /pending, /quit")

	var history []classifier.Turn
	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt := *thread
		if prompt == "" {
			prompt = "global"
		}
		color.New(color.FgHiBlack).Printf("[%s] > ", prompt)
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		switch {
		case text == "/quit":
			return
		case text == "/thread":
			*thread = ""
			continue
		case strings.HasPrefix(text, "/thread "):
			*thread = strings.TrimSpace(strings.TrimPrefix(text, "/thread "))
			continue
		case text == "/pending":
			state, err := svc.GetPending(context.Background(), *userID, *thread)
			if errors.Is(err, pending.ErrNotFound) {
				color.Yellow("(nothing pending)")
				continue
			}
			if err != nil {
				color.Red("Error: %v", err)
				continue
			}
			prettyPrint(state)
			continue
		}

		resp, err := svc.Resolve(context.Background(), service.ResolveRequest{
			UserID:   *userID,
			ThreadID: *thread,
			Text:     text,
			History:  history,
		})
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		res := resp.Result
		if res.NeedsClarification != nil {
			color.Yellow("%s → %s", res.Intent, res.NeedsClarification.Message)
		} else {
			color.Green("%s (%.2f, %s)", res.Intent, res.Confidence, res.Source)
		}
		if res.Params != nil {
			prettyPrint(res.Params)
		}
		if resp.Pending != nil {
			color.Magenta("pending: %s on %s", resp.Pending.Kind(), resp.Pending.ThreadID)
		}
		if resp.ImportedContacts > 0 {
			color.Green("imported %d contacts", resp.ImportedContacts)
		}

		history = append(history, classifier.Turn{Role: "user", Content: text})
	}
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

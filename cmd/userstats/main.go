package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"cute-videos/internal/model"
)

// userstats prints a summary of the user audit log the bot writes.
func main() {
	path := "user_logs.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No user data found. Users need to interact with the bot first.")
			return
		}
		log.Fatalf("read %s: %v", path, err)
	}

	users := make(map[string]model.UserRecord)
	if err := json.Unmarshal(data, &users); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Println("📊 CUTE VIDEOS BOT - USER ANALYTICS")

	if len(users) == 0 {
		fmt.Println("No user data available yet.")
		return
	}

	total := 0
	for _, rec := range users {
		total += rec.InteractionCount
	}

	fmt.Printf("👥 Total Users: %d\n", len(users))
	fmt.Printf("💬 Total Interactions: %d\n", total)
	fmt.Printf("📈 Average Interactions per User: %.1f\n\n", float64(total)/float64(len(users)))

	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	userColor := color.New(color.FgYellow)
	for _, id := range ids {
		rec := users[id]
		userColor.Printf("User ID: %s\n", id)
		fmt.Printf("  Name: %s\n", orUnknown(rec.FirstName))
		fmt.Printf("  Username: @%s\n", orUnknown(rec.Username))
		fmt.Printf("  First Seen: %s\n", rec.FirstSeen.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Last Seen: %s\n", rec.LastSeen.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Interactions: %d\n\n", rec.InteractionCount)
	}

	if abs, err := filepath.Abs(path); err == nil {
		fmt.Printf("Data file: %s\n", abs)
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

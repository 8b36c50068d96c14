// Command admin is an offline maintenance CLI that operates directly on
// the bot's data file. Stop the bot before running mutating commands, the
// file is not shared safely between processes.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/SM-TRIBE/bot/internal/economy"
	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/moderation"
	"github.com/SM-TRIBE/bot/internal/storage"
)

func main() {
	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "data.json"
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewFileStore(dataFile, log)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <stats|ban|unban|grant|resolve|promote|demote> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "stats":
		st := moderation.Collect(store.Load())
		fmt.Printf("users: %d\nmatches: %d\nreports: %d (%d open)\n",
			st.Users, st.Matches, st.Reports, st.Open)

	case "ban":
		id := mustUserID("admin ban <user_id>")
		setBanned(store, id, true)
		fmt.Printf("user %d banned\n", id)

	case "unban":
		id := mustUserID("admin unban <user_id>")
		setBanned(store, id, false)
		fmt.Printf("user %d unbanned\n", id)

	case "grant":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin grant <user_id> <amount>")
			os.Exit(1)
		}
		id, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			fmt.Println("invalid user id")
			os.Exit(1)
		}
		amount, err := strconv.ParseInt(os.Args[3], 10, 64)
		if err != nil || amount <= 0 {
			fmt.Println("invalid amount")
			os.Exit(1)
		}
		mutate(store, id, func(doc *models.Document) error {
			return economy.Grant(doc, id, amount)
		})
		fmt.Printf("granted %d coins to user %d\n", amount, id)

	case "resolve":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin resolve <report_id>")
			os.Exit(1)
		}
		reportID := os.Args[2]
		mutate(store, 0, func(doc *models.Document) error {
			_, err := moderation.Resolve(doc, reportID)
			return err
		})
		fmt.Printf("report %s resolved\n", reportID)

	case "promote":
		id := mustUserID("admin promote <user_id>")
		mutate(store, id, func(doc *models.Document) error {
			doc.AddSubAdmin(id)
			return nil
		})
		fmt.Printf("user %d promoted to sub-admin\n", id)

	case "demote":
		id := mustUserID("admin demote <user_id>")
		mutate(store, id, func(doc *models.Document) error {
			doc.RemoveSubAdmin(id)
			return nil
		})
		fmt.Printf("user %d demoted\n", id)

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func mustUserID(usage string) int64 {
	if len(os.Args) != 3 {
		fmt.Println("Usage: " + usage)
		os.Exit(1)
	}
	id, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		fmt.Println("invalid user id")
		os.Exit(1)
	}
	return id
}

func setBanned(store storage.Store, id int64, banned bool) {
	mutate(store, id, func(doc *models.Document) error {
		_, err := moderation.SetBanned(doc, id, banned)
		return err
	})
}

func mutate(store storage.Store, id int64, fn func(*models.Document) error) {
	if err := store.Mutate([]int64{id}, fn); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"chat-relay/domain"
	"chat-relay/repositories"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Prints stored messages as a table.
// With -json the JSON file store is read, otherwise the badger directory.
// -user1/-user2 restrict the output to one conversation.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	jsonPath := flag.String("json", "", "Path to the JSON messages file")
	user1 := flag.String("user1", "", "First participant")
	user2 := flag.String("user2", "", "Second participant")
	flag.Parse()

	if (*user1 == "") != (*user2 == "") {
		log.Fatal("-user1 and -user2 go together")
	}
	var pair *domain.Pair
	if *user1 != "" {
		p := domain.NewPair(domain.Identity(*user1), domain.Identity(*user2))
		pair = &p
	}

	var (
		messages []repositories.DiskMessage
		err      error
	)
	if *jsonPath != "" {
		messages, err = readJSON(*jsonPath, pair)
	} else {
		messages, err = readBadger(*dbPath, pair)
	}
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "At", "From", "To", "Text", "Image"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, m := range messages {
		displayID := m.ID.String()[:8]
		table.Append([]string{
			displayID,
			time.UnixMilli(m.CreatedAt).Format(time.DateTime),
			m.From,
			m.To,
			m.Text,
			m.Image,
		})
	}
	table.Render()
	fmt.Printf("%d message(s)\n", len(messages))
}

func readJSON(path string, pair *domain.Pair) ([]repositories.DiskMessage, error) {
	repository := repositories.NewJSONFileRepository(path, slog.Default())
	if pair != nil {
		return repository.GetConversation(*pair)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var messages []repositories.DiskMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// readBadger scans keys directly: the repository leases a sequence, which a read-only DB refuses.
func readBadger(path string, pair *domain.Pair) ([]repositories.DiskMessage, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("error while opening Badger: %w", err)
	}
	defer db.Close()

	prefix := []byte(repositories.MessagePrefix)
	if pair != nil {
		prefix = []byte(repositories.ConversationPrefix(*pair))
	}

	var messages []repositories.DiskMessage
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var m repositories.DiskMessage
				if err := json.Unmarshal(v, &m); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}
				messages = append(messages, m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		// A crashed writer leaves the value log untruncated; a write open repairs it.
		repairOpts := badger.DefaultOptions(path).WithLogger(nil).WithBypassLockGuard(true)
		db, err = badger.Open(repairOpts)
		if err != nil {
			return nil, fmt.Errorf("repair failed: %w", err)
		}
		_ = db.Close()
		return badger.Open(opts)
	}
	return db, err
}

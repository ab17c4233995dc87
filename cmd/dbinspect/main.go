// Package main provides a read-only inspection tool for the BookDue database.
//
// Usage:
//
//	DATA_PATH=~/BookDue/data go run ./cmd/dbinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/BookDue/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	userCount := countPrefix(db, "user:")
	unlockCount := countPrefix(db, "unlock:")

	deadlineCount := 0
	withProgress := 0
	withoutProgress := 0
	totalSnapshots := 0
	byFormat := map[domain.Format]int{}

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("deadline:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("deadline:")); it.ValidForPrefix([]byte("deadline:")); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Skip index keys
			if strings.Contains(key, "idx:") {
				continue
			}

			err := item.Value(func(val []byte) error {
				var deadline domain.Deadline
				if err := json.Unmarshal(val, &deadline); err != nil {
					return err
				}

				deadlineCount++
				byFormat[deadline.Format]++
				snapshotCount := len(deadline.Progress)
				totalSnapshots += snapshotCount

				if snapshotCount > 0 {
					withProgress++
					// Show first few deadlines with progress
					if withProgress <= 3 {
						fmt.Printf("Deadline: %s\n", deadline.BookTitle)
						fmt.Printf("  ID: %s\n", deadline.ID)
						fmt.Printf("  User: %s\n", deadline.UserID)
						fmt.Printf("  Format: %s (%d total)\n", deadline.Format, deadline.TotalQuantity)
						fmt.Printf("  Due: %s\n", deadline.DeadlineDate.Format("2006-01-02"))
						fmt.Printf("  Snapshots: %d (latest %d)\n", snapshotCount, deadline.LatestProgress())
						fmt.Println()
					}
				} else {
					withoutProgress++
					if withoutProgress <= 3 {
						fmt.Printf("Deadline (NO PROGRESS): %s\n", deadline.BookTitle)
						fmt.Printf("  ID: %s\n", deadline.ID)
						fmt.Printf("  User: %s\n", deadline.UserID)
						fmt.Printf("  Due: %s\n", deadline.DeadlineDate.Format("2006-01-02"))
						fmt.Println()
					}
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading deadline %s: %v", key, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total users: %d\n", userCount)
	fmt.Printf("Total deadlines: %d\n", deadlineCount)
	for format, count := range byFormat {
		fmt.Printf("  %s: %d\n", format, count)
	}
	fmt.Printf("Deadlines with progress: %d\n", withProgress)
	fmt.Printf("Deadlines without progress: %d\n", withoutProgress)
	fmt.Printf("Total snapshots: %d\n", totalSnapshots)
	if deadlineCount > 0 {
		fmt.Printf("Average snapshots per deadline: %.1f\n", float64(totalSnapshots)/float64(deadlineCount))
	}
	fmt.Printf("Achievement unlocks: %d\n", unlockCount)
}

// countPrefix counts entity records under a key prefix, skipping index keys.
func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if strings.Contains(string(it.Item().Key()), "idx:") {
				continue
			}
			count++
		}
		return nil
	})
	return count
}

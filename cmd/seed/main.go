// Package main provides a tool to seed the database with test deadline data.
//
// This reads existing users from the database and creates deadlines with
// realistic progress histories to test pace, streak, and achievement features.
//
// Usage:
//
//	DATA_PATH=~/BookDue/data go run ./cmd/seed
//	DATA_PATH=~/BookDue/data go run ./cmd/seed --create-users  # Also create test users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/auth"
	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/id"
	"github.com/bookdueapp/bookdue-server/internal/store"
)

var createUsers = flag.Bool("create-users", false, "Create test users before seeding")

// seedBooks are title/author/format/length templates for generated deadlines.
var seedBooks = []struct {
	title  string
	author string
	format domain.Format
	total  int
}{
	{"Project Hail Mary", "Andy Weir", domain.FormatPhysical, 476},
	{"The Fifth Season", "N.K. Jemisin", domain.FormatEbook, 468},
	{"Babel", "R.F. Kuang", domain.FormatAudio, 1309},
	{"Piranesi", "Susanna Clarke", domain.FormatPhysical, 245},
	{"The Martian", "Andy Weir", domain.FormatAudio, 644},
	{"Tomorrow, and Tomorrow, and Tomorrow", "Gabrielle Zevin", domain.FormatEbook, 416},
	{"A Memory Called Empire", "Arkady Martine", domain.FormatPhysical, 462},
	{"Circe", "Madeline Miller", domain.FormatAudio, 723},
}

var seedSources = []string{domain.SourceARC, domain.SourceLibrary, domain.SourcePersonal}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/BookDue/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *createUsers {
		createTestUsers(ctx, s)
	}

	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		users = append(users, user)
	}

	if len(users) == 0 {
		log.Fatal("No users found in database. Create a user first or pass --create-users.")
	}

	fmt.Printf("Found %d users\n", len(users))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, user := range users {
		fmt.Printf("\nSeeding deadlines for user: %s (%s)\n", user.Name(), user.ID)

		// Pick 3-5 books for this user
		numBooks := min(3+rng.Intn(3), len(seedBooks))

		shuffled := make([]int, len(seedBooks))
		for i := range shuffled {
			shuffled[i] = i
		}
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		now := time.Now()
		created := 0

		for _, bookIdx := range shuffled[:numBooks] {
			book := seedBooks[bookIdx]
			author := book.author

			// Due 1-6 weeks out
			due := now.AddDate(0, 0, 7+rng.Intn(36))

			deadline := &domain.Deadline{
				ID:            id.MustGenerate("dl"),
				UserID:        user.ID,
				BookTitle:     book.title,
				Author:        &author,
				Format:        book.format,
				Source:        seedSources[rng.Intn(len(seedSources))],
				Flexibility:   domain.FlexibilityFlexible,
				TotalQuantity: book.total,
				DeadlineDate:  due,
				CreatedAt:     now.AddDate(0, 0, -14),
				UpdatedAt:     now,
				Progress:      seedProgress(rng, book.total, now),
			}

			if err := s.CreateDeadline(ctx, deadline); err != nil {
				log.Printf("Failed to create deadline for %s: %v", book.title, err)
				continue
			}

			latest := deadline.LatestProgress()
			fmt.Printf("  Created: %s (%s, %d/%d, due %s)\n",
				book.title, book.format, latest, book.total, due.Format("2006-01-02"))
			created++
		}

		fmt.Printf("  Created %d deadlines\n", created)
	}

	fmt.Println("\nSeeding complete!")
}

// seedProgress builds an append-only snapshot history over the past 14 days.
// Today and yesterday always get a snapshot so the seeded user has an active
// streak.
func seedProgress(rng *rand.Rand, total int, now time.Time) []domain.ProgressSnapshot {
	var snapshots []domain.ProgressSnapshot
	cumulative := 0

	for day := 13; day >= 0; day-- {
		// 80% chance of reading on past days, always read today and yesterday
		if day > 1 && rng.Float32() > 0.8 {
			continue
		}

		// 10-50 units of progress per reading day, capped at the book length
		cumulative += 10 + rng.Intn(41)
		if cumulative > total {
			cumulative = total
		}

		// Random time during the day (6am - 11pm)
		hour := 6 + rng.Intn(17)
		minute := rng.Intn(60)
		at := time.Date(now.Year(), now.Month(), now.Day()-day, hour, minute, 0, 0, time.Local)

		snapshots = append(snapshots, domain.ProgressSnapshot{
			ID:              id.MustGenerate("snap"),
			CurrentProgress: cumulative,
			CreatedAt:       at.UTC().Format(time.RFC3339),
		})

		if cumulative == total {
			break
		}
	}

	return snapshots
}

// testUserNames are display names for generated test users.
var testUserNames = []string{
	"Alex Rivera",
	"Jordan Chen",
	"Sam Taylor",
	"Casey Morgan",
	"Riley Kim",
}

// createTestUsers creates test users with a known password.
func createTestUsers(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Creating Test Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return
	}

	now := time.Now()

	for i, name := range testUserNames {
		email := fmt.Sprintf("test%d@example.com", i+1)

		if existing, _ := s.GetUserByEmail(ctx, email); existing != nil {
			fmt.Printf("  User %s already exists, skipping\n", email)
			continue
		}

		user := &domain.User{
			ID:           id.MustGenerate("user"),
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  name,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("Failed to create user %s: %v", email, err)
			continue
		}

		fmt.Printf("  Created user: %s (%s / testpass123)\n", name, email)
	}
}

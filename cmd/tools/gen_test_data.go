package main

import (
	"fmt"
	"log"
	"time"

	"taskline/auth"
	"taskline/domain"
	"taskline/internal"
	"taskline/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Seeds the directory store with a small team: four users, one project,
// one task, and one conversation of each kind, plus ready-to-use sessions
// so a browser (or the e2e client) can connect straight away.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	conversations := repositories.NewConversationRepository(db)
	projects := repositories.NewProjectRepository(db)
	tasks := repositories.NewTaskRepository(db)
	messages := repositories.NewMessageRepository(db, logger)
	sessions := repositories.NewSessionRepository(db)

	fmt.Println("taskline: seeding test data...")

	emails := []string{"alice@taskline.dev", "bob@taskline.dev", "clara@taskline.dev", "marc@taskline.dev"}
	ids := make([]string, 0, len(emails))
	for _, email := range emails {
		hash, err := auth.HashPassword("Taskline-Demo-2026!")
		if err != nil {
			log.Fatalf("Hashing failed: %v", err)
		}
		id, err := users.CreateUser(email, hash)
		if err != nil {
			log.Fatalf("User seed failed for %s: %v", email, err)
		}
		ids = append(ids, id)
		fmt.Printf("  user     %s → %s\n", email, id)
	}
	alice, bob, clara, marc := ids[0], ids[1], ids[2], ids[3]

	project := domain.Project{ID: uuid.NewString(), ManagerID: marc}
	if err := projects.Put(project); err != nil {
		log.Fatalf("Project seed failed: %v", err)
	}
	task := domain.Task{ID: uuid.NewString(), Assignees: []string{bob, clara}}
	if err := tasks.Put(task); err != nil {
		log.Fatalf("Task seed failed: %v", err)
	}

	seed := []domain.Conversation{
		{ID: domain.ConversationID(uuid.NewString()), Kind: domain.KindDirect,
			Direct: &domain.DirectLink{UserA: alice, UserB: bob}},
		{ID: domain.ConversationID(uuid.NewString()), Kind: domain.KindProject,
			Project: &domain.ProjectLink{ProjectID: project.ID}},
		{ID: domain.ConversationID(uuid.NewString()), Kind: domain.KindTask,
			Task: &domain.TaskLink{TaskID: task.ID}},
	}
	for _, conversation := range seed {
		if err := conversations.Put(conversation); err != nil {
			log.Fatalf("Conversation seed failed: %v", err)
		}
		fmt.Printf("  conv     %-7s %s\n", conversation.Kind, conversation.ID)
	}

	// A little history in the project conversation so fan-out has
	// participants to find.
	now := time.Now().UTC()
	for i, author := range []string{alice, clara} {
		err := messages.StoreMessage(domain.Message{
			ID:           uuid.New(),
			Conversation: seed[1].ID,
			AuthorID:     author,
			Content:      fmt.Sprintf("seed message %d", i+1),
			CreatedAt:    now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			log.Fatalf("Message seed failed: %v", err)
		}
	}
	recent, err := messages.Recent(seed[1].ID, 10)
	if err != nil {
		log.Fatalf("Read-back failed: %v", err)
	}
	fmt.Printf("  messages %d seeded in project conversation\n", len(recent))

	// One session per user: cookie value = "sid-{email-local-part}".
	for i, email := range emails {
		token, err := auth.GenerateToken(ids[i], []string{"user"},
			config.AuthTokenDuration, []byte(config.JWTSecret))
		if err != nil {
			log.Fatalf("Token generation failed: %v", err)
		}
		sid := "sid-" + email[:len(email)-len("@taskline.dev")]
		if err := sessions.Put(auth.Session{ID: sid, Token: token}); err != nil {
			log.Fatalf("Session seed failed: %v", err)
		}
		fmt.Printf("  session  %s\n", sid)
	}

	fmt.Println("\nDone. Point the gateway at the same BADGER_FILEPATH and connect.")
}

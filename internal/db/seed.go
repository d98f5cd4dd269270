package db

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedTestData resets the database and populates it with demo profiles and
// a handful of pending match requests (with their notifications).
//
// Compatible with both MySQL and SQLite.
func SeedTestData(gdb *gorm.DB) error {
	// --- Fresh start ---
	for _, table := range []string{"notifications", "chat_sessions", "match_requests", "users"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch gdb.Dialector.Name() {
	case "mysql":
		gdb.Exec("ALTER TABLE match_requests AUTO_INCREMENT = 1")
		gdb.Exec("ALTER TABLE notifications AUTO_INCREMENT = 1")
		gdb.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		gdb.Exec("DELETE FROM sqlite_sequence WHERE name IN ('match_requests', 'notifications', 'users')")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []User{
		{
			Username: "asha", Email: "asha@example.com", PasswordHash: string(hash),
			Role: RoleLearner, Region: "Maharashtra",
			LearnPrimary: "English", LearnSecondary: "French",
			KnownLanguages: []KnownLanguage{{Language: "Hindi", Fluency: FluencyNative}, {Language: "Marathi", Fluency: FluencyAdvanced}},
			Interests:      []string{"Movies", "Cooking", "Cricket"},
		},
		{
			Username: "jon", Email: "jon@example.com", PasswordHash: string(hash),
			Role: RoleTeacher, Region: "Maharashtra",
			LearnPrimary: "Hindi",
			KnownLanguages: []KnownLanguage{{Language: "English", Fluency: FluencyNative}},
			Interests:      []string{"Movies", "Hiking"},
		},
		{
			Username: "mei", Email: "mei@example.com", PasswordHash: string(hash),
			Role: RoleLearner, Region: "Shanghai",
			LearnPrimary: "English", LearnSecondary: "Hindi",
			KnownLanguages: []KnownLanguage{{Language: "Mandarin", Fluency: FluencyNative}},
			Interests:      []string{"Cooking", "Photography"},
		},
		{
			Username: "carlos", Email: "carlos@example.com", PasswordHash: string(hash),
			Role: RoleTeacher, Region: "Madrid",
			LearnPrimary: "Mandarin",
			KnownLanguages: []KnownLanguage{{Language: "Spanish", Fluency: FluencyNative}, {Language: "English", Fluency: FluencyAdvanced}},
			Interests:      []string{"Photography", "Movies"},
		},
	}
	for i := range users {
		if err := gdb.Create(&users[i]).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Printf("Seeded %d users.", len(users))

	// A couple of pending requests, each with its match_request notification.
	pairs := [][2]int{{0, 1}, {2, 3}} // asha → jon, mei → carlos
	for _, p := range pairs {
		req := MatchRequest{
			SenderID:   users[p[0]].ID,
			ReceiverID: users[p[1]].ID,
			Status:     StatusPending,
		}
		if err := gdb.Create(&req).Error; err != nil {
			return fmt.Errorf("failed to seed match request: %w", err)
		}
		notif := Notification{
			Type:           NotifMatchRequest,
			RecipientID:    req.ReceiverID,
			SenderID:       req.SenderID,
			RelatedMatchID: &req.ID,
		}
		if err := gdb.Create(&notif).Error; err != nil {
			return fmt.Errorf("failed to seed notification: %w", err)
		}
	}
	log.Printf("Seeded %d pending match requests.", len(pairs))

	return nil
}

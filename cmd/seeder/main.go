package main

import (
	"context"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/shuttle-league/internal/database"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/social"
	"github.com/mauv0809/shuttle-league/internal/user"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	if value, ok := os.LookupEnv("DB_NAME"); ok {
		config["DB_NAME"] = value
	} else {
		log.Fatalf("Error: Required environment variable %s is not set.", "DB_NAME")
	}
	// Optional: seed the remote primary instead of the local file.
	for _, key := range []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		config[key] = os.Getenv(key)
	}
	return config
}

var players = []struct{ name, nick string }{
	{"Viktor Axelsen", "Viktor"},
	{"Kento Momota", "Kento"},
	{"Chou Tien Chen", "Chou"},
	{"Lee Zii Jia", "Zii"},
	{"Anders Antonsen", "Anders"},
	{"Jonatan Christie", "Jojo"},
}

const numMatches = 40

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	users := user.New(db)
	leagues := league.New(db)
	friends := social.New(db)

	ids := make([]string, 0, len(players))
	suffix := uuid.NewString()[:4]
	for _, p := range players {
		username := strings.ToLower(strings.ReplaceAll(p.name, " ", "_")) + "_" + suffix
		u, err := users.CreateUser(ctx, user.NewUser{
			ID:          uuid.NewString(),
			DisplayName: p.name,
			Nickname:    p.nick,
			Username:    username,
			Email:       username + "@example.com",
		})
		if err != nil {
			log.Fatalf("Failed to create user %s: %s", p.name, err)
		}
		ids = append(ids, u.ID)
	}
	log.Info("Created seed users", "count", len(ids))

	l, err := leagues.CreateLeague(ctx, league.NewLeague{
		Name:       "Seeded Smash League",
		Visibility: league.VisibilityPublic,
		Rules:      league.Rules{Points: league.DefaultPoints, Deuce: true},
		CreatorID:  ids[0],
	})
	if err != nil {
		log.Fatalf("Failed to create league: %s", err)
	}
	for _, id := range ids[1:] {
		if _, err := leagues.JoinLeague(ctx, l.ID, id); err != nil {
			log.Fatalf("Failed to join league: %s", err)
		}
	}
	log.Info("Created league", "leagueID", l.ID, "participants", len(ids))

	for i := 1; i < len(ids); i += 2 {
		req, err := friends.SendFriendRequest(ctx, ids[i-1], ids[i])
		if err != nil {
			log.Fatalf("Failed to send friend request: %s", err)
		}
		if _, err := friends.AcceptFriendRequest(ctx, req.ID, ids[i]); err != nil {
			log.Fatalf("Failed to accept friend request: %s", err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	startTime := time.Now()
	for i := 0; i < numMatches; i++ {
		order := rng.Perm(len(ids))
		m, err := leagues.CreateMatch(ctx, l.ID, []string{ids[order[0]]}, []string{ids[order[1]]})
		if err != nil {
			log.Fatalf("Failed to create match: %s", err)
		}
		winner, loser := randomScore(rng, l.Rules.Points)
		score1, score2 := winner, loser
		if rng.Intn(2) == 0 {
			score1, score2 = loser, winner
		}
		if _, err := leagues.FinishMatch(ctx, m.ID, score1, score2); err != nil {
			log.Fatalf("Failed to finish match: %s", err)
		}
	}
	log.Info("Successfully seeded matches.", "count", numMatches, "duration", time.Since(startTime))
}

// randomScore returns a valid deuce game result.
func randomScore(rng *rand.Rand, points int) (winner, loser int) {
	if rng.Intn(4) > 0 {
		return points, rng.Intn(points - 1)
	}
	extra := 1 + rng.Intn(8)
	return points + extra, points + extra - 2
}

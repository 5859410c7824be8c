// Command seed fills the lead database with fake leads for local
// development. Leads are created through the lead service as a seed admin,
// so every row gets its CREATED history entry.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/config"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/database"
	"github.com/Kurama07a/buyer-lead-app/internal/logging"
)

var (
	timeframes = []string{"ASAP", "1-3 months", "3-6 months", "6-12 months", "Just exploring"}
	motives    = []string{"Relocating", "Downsizing", "Divorce", "Inherited property", "Financial hardship", "Upgrading"}
	sources    = []string{"Zillow", "Referral", "Website", "Cold call", "Direct mail", "Facebook"}
)

func main() {
	count := flag.Int("n", 50, "number of leads to create")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	adminEmail := flag.String("admin-email", "admin@example.com", "seed admin account")
	adminPassword := flag.String("admin-password", "changeme123", "password for a new seed admin")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	if err := database.Migrate(cfg.Database.URL); err != nil {
		slog.Error("migrate", "error", err)
		os.Exit(1)
	}
	pool, err := database.NewPool(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns: 4,
		MinConns: 1,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := database.New(pool)
	authSvc := auth.NewService(st, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), nil, cfg.Auth.BcryptCost)
	admin, err := authSvc.EnsureUser(ctx, *adminEmail, *adminPassword, "Seed Admin", core.RoleAdmin)
	if err != nil {
		slog.Error("ensure seed admin", "email", *adminEmail, "error", err)
		os.Exit(1)
	}

	leads := core.NewService(st, core.WithLocation(cfg.Search.Location()))
	faker := gofakeit.New(*seed)

	created := 0
	for i := 0; i < *count; i++ {
		if _, err := leads.CreateLead(ctx, admin, fakeLead(faker)); err != nil {
			slog.Warn("create lead", "index", i, "error", err)
			continue
		}
		created++
	}

	slog.Info("seed complete", "created", created, "requested", *count, "admin", admin.Email, "seed", *seed)
}

func fakeLead(f *gofakeit.Faker) core.LeadInput {
	in := core.LeadInput{
		FirstName:         f.FirstName(),
		LastName:          f.LastName(),
		Email:             f.Email(),
		Phone:             f.Phone(),
		PropertyType:      string(core.PropertyTypes[f.Number(0, len(core.PropertyTypes)-1)]),
		PropertyAddress:   f.Street(),
		PropertyCity:      f.City(),
		PropertyState:     f.StateAbr(),
		PropertyZipCode:   f.Zip(),
		PropertyCondition: string(core.PropertyConditions[f.Number(0, len(core.PropertyConditions)-1)]),
		DesiredTimeframe:  f.RandomString(timeframes),
		LeadSource:        f.RandomString(sources),
		Status:            string(core.Statuses[f.Number(0, len(core.Statuses)-1)]),
		Priority:          string(core.Priorities[f.Number(0, len(core.Priorities)-1)]),
	}

	if f.Bool() {
		in.Address, in.City, in.State, in.ZipCode = f.Street(), f.City(), f.StateAbr(), f.Zip()
	}
	if f.Number(0, 9) > 1 {
		v := float64(f.Number(80, 1500)) * 1000
		in.EstimatedValue = &v
	}
	if f.Bool() {
		v := float64(f.Number(0, 900)) * 1000
		in.CurrentMortgageBalance = &v
	}
	if f.Bool() {
		in.MotivationForSelling = f.RandomString(motives)
	}
	if f.Number(0, 3) == 0 {
		in.AdditionalNotes = f.Sentence(8)
	}
	return in
}

package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/repository/specification"
	"ai-chat-quota-be/internal/repository/unitofwork"
	"ai-chat-quota-be/pkg/billing"
	"ai-chat-quota-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type demoAccount struct {
	Email    string
	FullName string
	Bundles  []demoBundle
}

type demoBundle struct {
	Tier  entity.BundleTier
	Cycle entity.BillingCycle
	Used  int
}

// Every demo account uses the password "password123".
var demoAccounts = []demoAccount{
	{
		Email:    "basic@example.com",
		FullName: "Basic Demo",
		Bundles:  []demoBundle{{Tier: entity.BundleTierBasic, Cycle: entity.BillingCycleMonthly, Used: 8}},
	},
	{
		Email:    "pro@example.com",
		FullName: "Pro Demo",
		Bundles: []demoBundle{
			{Tier: entity.BundleTierBasic, Cycle: entity.BillingCycleMonthly},
			{Tier: entity.BundleTierPro, Cycle: entity.BillingCycleYearly, Used: 42},
		},
	},
	{
		Email:    "enterprise@example.com",
		FullName: "Enterprise Demo",
		Bundles:  []demoBundle{{Tier: entity.BundleTierEnterprise, Cycle: entity.BillingCycleMonthly, Used: 1200}},
	},
}

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: Failed to hash demo password:", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)

	color.Cyan("Seeding demo accounts...")
	for _, account := range demoAccounts {
		if err := seedAccount(ctx, uowFactory, account, string(hash)); err != nil {
			color.Red("Error seeding %s: %v", account.Email, err)
			continue
		}
	}
	color.Green("✅ Demo seeding completed")
}

func seedAccount(ctx context.Context, uowFactory unitofwork.RepositoryFactory, account demoAccount, passwordHash string) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	email := strings.ToLower(account.Email)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return err
	}
	if existing != nil {
		color.Yellow("Account '%s' already exists, skipping...", email)
		return nil
	}

	now := time.Now().UTC()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		FullName:     account.FullName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return err
	}

	for i, b := range account.Bundles {
		maxMessages, price, err := billing.PriceFor(b.Tier, b.Cycle)
		if err != nil {
			return err
		}
		// Distinct creation times keep the newest-first ordering deterministic.
		bundle := entity.NewBundle(user.Id, b.Tier, maxMessages, price, b.Cycle, now.Add(time.Duration(i)*time.Second))
		bundle.MessagesUsed = b.Used
		if err := uow.BundleRepository().Create(ctx, bundle); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}
	color.Green("Created %s with %d bundle(s)", email, len(account.Bundles))
	return nil
}

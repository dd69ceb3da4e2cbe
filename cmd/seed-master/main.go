// Seeds the two fixed accounts the application depends on: the operator
// account the counter staff log in with, and the system account that
// owns machine-generated vouchers. Safe to re-run; existing accounts are
// left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmdatafocus/vouchers_backend/config"
	"github.com/mmdatafocus/vouchers_backend/models"
	"github.com/mmdatafocus/vouchers_backend/utils"
)

func main() {
	config.ConnectTargetWithRetry()
	store := models.NewStore(config.GetTargetDB())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	masterPassword := os.Getenv("MASTER_PASSWORD")
	if masterPassword == "" {
		log.Fatal("MASTER_PASSWORD is required")
	}

	masterID, err := seedUser(ctx, store, models.User{
		Name:      getEnv("MASTER_NAME", "hmk"),
		Email:     os.Getenv("MASTER_EMAIL"),
		Phone:     os.Getenv("MASTER_PHONE"),
		LoginCode: getEnv("MASTER_LOGIN_CODE", "hmk"),
	}, masterPassword, nil)
	if err != nil {
		log.Fatalf("seed master account: %v", err)
	}

	// The system account is never logged into; give it a throwaway
	// password nobody knows.
	systemPassword, err := utils.GenerateLoginCode(ctx, store.LoginCodeExists)
	if err != nil {
		log.Fatalf("generate system password: %v", err)
	}
	if _, err := seedUser(ctx, store, models.User{
		Name:      "System",
		LoginCode: "system",
	}, systemPassword, &masterID); err != nil {
		log.Fatalf("seed system account: %v", err)
	}

	log.Println("seeding complete")
}

func seedUser(ctx context.Context, store *models.Store, user models.User, password string, createdBy *primitive.ObjectID) (primitive.ObjectID, error) {
	existingID, err := store.UserIDByLoginCode(ctx, user.LoginCode)
	if err == nil {
		log.Printf("account %q already exists, skipping", user.LoginCode)
		return existingID, nil
	}
	if !errors.Is(err, models.ErrRecordNotFound) {
		return primitive.NilObjectID, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return primitive.NilObjectID, err
	}
	user.Password = string(hashed)
	user.CreatedByID = createdBy
	if err := store.CreateUser(ctx, &user); err != nil {
		return primitive.NilObjectID, err
	}
	log.Printf("created account %q", user.LoginCode)
	return user.ID, nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

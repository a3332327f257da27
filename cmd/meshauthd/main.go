package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"git.sr.ht/~jakintosh/meshauth/internal/api"
	"git.sr.ht/~jakintosh/meshauth/internal/database"
	"git.sr.ht/~jakintosh/meshauth/internal/service"
	"git.sr.ht/~jakintosh/meshauth/internal/signing"
)

func main() {
	dbPath := readEnvVar("DB_PATH")
	port := fmt.Sprintf(":%s", readEnvVar("PORT"))
	keyFile := readEnvVar("SIGNING_KEY_FILE")
	adminHash := []byte(os.Getenv("ADMIN_SECRET_HASH"))

	if len(adminHash) == 0 {
		log.Println("ADMIN_SECRET_HASH not set; admin endpoints are disabled")
	}

	db := database.NewSQLiteStore(dbPath)
	defer db.Close()

	identity, err := signing.Load(keyFile)
	if err != nil {
		log.Fatalf("failed to load signing identity: %v\n", err)
	}

	svc := service.New(
		db.DeviceStore(),
		db.IssuanceStore(),
		identity,
		adminHash,
	)
	a := api.New(svc)

	log.Printf("meshauthd listening on %s\n", port)
	log.Fatal(http.ListenAndServe(port, a.Router()))
}

func readEnvVar(name string) string {
	str, present := os.LookupEnv(name)
	if !present {
		log.Fatalf("missing required env var '%s'\n", name)
	}
	return str
}

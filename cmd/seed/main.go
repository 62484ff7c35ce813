package main

import (
	"fmt"
	"log"
	"os"

	"github.com/koweyli/vantage-console/internal/store"
)

func main() {
	dataDir := "data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	snap, err := store.NewFileSnapshotter(dataDir)
	if err != nil {
		log.Fatal("Failed to prepare data directory:", err)
	}

	users, err := store.NewUserStore(snap)
	if err != nil {
		log.Fatal("Failed to load user store:", err)
	}
	if err := users.Flush(); err != nil {
		log.Fatal("Failed to write user data:", err)
	}
	fmt.Printf("✓ Seeded %d users\n", users.Count())

	perms, err := store.NewPermissionStore(snap)
	if err != nil {
		log.Fatal("Failed to load permission store:", err)
	}
	if err := perms.Flush(); err != nil {
		log.Fatal("Failed to write permission data:", err)
	}
	fmt.Printf("✓ Seeded route catalog with %d routes\n", len(perms.Catalog()))

	audit, err := store.NewAuditStore(snap)
	if err != nil {
		log.Fatal("Failed to load audit store:", err)
	}
	if err := audit.Flush(); err != nil {
		log.Fatal("Failed to write audit data:", err)
	}
	fmt.Printf("✓ Audit log initialized with %d entries\n", audit.Len())

	fmt.Println("✓ Seed complete, data written to", dataDir)
}

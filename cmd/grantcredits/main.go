// Command grantcredits appends a credit batch to a photographer's ledger.
// Purchases normally arrive through the billing webhook; this tool covers
// gifts, support refunds and local development seeding.
//
// Usage:
//
//	grantcredits -photographer 42 -amount 500 -type gift -days 365 -ref support-ticket-831
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sabaipics/sabaipics/app/models"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
	"github.com/sabaipics/sabaipics/internal/pkg/database"
	"github.com/sabaipics/sabaipics/internal/pkg/env"
)

func main() {
	photographerID := flag.Uint("photographer", 0, "photographer id to credit")
	amount := flag.Int64("amount", 0, "number of credits to grant")
	entryType := flag.String("type", models.LedgerTypeGift, "ledger entry type: purchase, gift or refund")
	days := flag.Int("days", 365, "validity in days before the batch expires")
	ref := flag.String("ref", "", "external reference (order id, support ticket)")
	flag.Parse()

	if *photographerID == 0 || *amount <= 0 {
		flag.Usage()
		os.Exit(1)
	}
	switch *entryType {
	case models.LedgerTypePurchase, models.LedgerTypeGift, models.LedgerTypeRefund:
	default:
		log.Fatalf("invalid entry type %q", *entryType)
	}

	env.SetupEnvFile()
	database.SetupDatabase()

	engine := credits.NewEngine(database.GetDB())
	entry, err := engine.Grant(*photographerID, *amount, *entryType, time.Duration(*days)*24*time.Hour, *ref)
	if err != nil {
		log.Fatalf("grant failed: %v", err)
	}

	balance, err := engine.Balance(*photographerID)
	if err != nil {
		log.Fatalf("balance read failed: %v", err)
	}

	fmt.Printf("granted %d credits to photographer %d (entry %d, expires %s), balance now %d\n",
		*amount, *photographerID, entry.ID, entry.ExpiresAt.Format(time.RFC3339), balance)
}

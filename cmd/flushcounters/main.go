// Command flushcounters drains the pending Redis counters into the
// database. Meant to run from cron; the API process itself keeps no
// background loops.
package main

import (
	"log"

	"github.com/sabaipics/sabaipics/internal/pkg/cache"
	"github.com/sabaipics/sabaipics/internal/pkg/database"
	"github.com/sabaipics/sabaipics/internal/pkg/env"
	"github.com/sabaipics/sabaipics/internal/pkg/metrics/counter"
)

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	if err := counter.FlushAll(); err != nil {
		log.Fatalf("counter flush failed: %v", err)
	}
	log.Println("counters flushed")
}

// import-feed runs one vendor CSV import from the command line.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     go run ./cmd/import-feed -vendor "Acme Foods" -location 1 -file feed.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"bitbucket.org/mmdatafocus/retail_backend/workflow"
)

func main() {
	vendor := flag.String("vendor", "", "vendor name (required)")
	locationId := flag.Int("location", 0, "location id (required)")
	file := flag.String("file", "", "path to the CSV feed (required)")
	actorId := flag.Int("actor", 0, "actor id recorded on the import run")
	flag.Parse()

	if *vendor == "" || *locationId <= 0 || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *file, err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	ctx := context.Background()
	if *actorId > 0 {
		ctx = utils.SetActorIdInContext(ctx, *actorId)
	}

	summary, err := workflow.ProcessVendorFeed(ctx, *vendor, *locationId, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("import run %d: processed=%d updated=%d matched=%d unmatched=%d errors=%d\n",
		summary.ImportRunId, summary.Processed, summary.Updated, summary.Matched, summary.Unmatched, summary.ErrorCount)
	for _, parseErr := range summary.Errors {
		fmt.Printf("  line %d: %s\n", parseErr.Line, parseErr.Reason)
	}
}

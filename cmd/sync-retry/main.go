// sync-retry runs a single pass over pending stock mutations and pushes
// their current quantities to the POS. Intended for cron or manual drain;
// the server runs the same pass on a loop.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/posclient"
	"bitbucket.org/mmdatafocus/retail_backend/workflow"
)

func main() {
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	client := posclient.NewFromEnv()
	if client == nil {
		fmt.Fprintln(os.Stderr, "POS_API_KEY not set; nothing to sync against.")
		os.Exit(2)
	}
	workflow.SetPrimaryClient(client)

	synced, failed, err := workflow.RunPendingSyncRetry(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync retry failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sync retry: synced=%d failed=%d\n", synced, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

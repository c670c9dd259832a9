// Package retention provides retention policy enforcement for journal records.
//
// # Retention Policy
//
// The retention package prunes journal records by age on a cron schedule.
// Count-based bounds live in the storage backends themselves (the memory
// backend evicts at its cap), so the pruner only handles time.
//
// # Basic Usage
//
//	// Create retention pruner
//	pruner := retention.NewPruner(store, &retention.Config{
//	    MaxAge:        7 * 24 * time.Hour,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	}, logger)
//
//	// Start background pruning
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
// # Manual Pruning
//
//	deleted, err := pruner.Prune(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("Deleted %d old journal records", deleted)
//
// # Scheduling
//
// The pruner runs on a cron schedule:
//
//   - "0 3 * * *": Daily at 3 AM (default)
//   - "0 0 * * 0": Weekly on Sunday at midnight
//   - "0 */6 * * *": Every 6 hours
//
// If no schedule is configured (empty PruneSchedule), the scheduler does
// nothing and Start() returns immediately without error. Stop() waits for a
// running pruning job to complete before returning.
package retention

// Package testutil holds the moq doubles for the store interfaces and a
// TestHarness that backs them with an in-memory run database.
//
// The doubles are regenerated from the interfaces with go generate ./...
// Tests override single methods after NewTestHarness has delegated every
// method to the database:
//
//	h := testutil.NewTestHarness(t)
//	h.Store.ListLogsFunc = func(ctx context.Context) ([]db.LogSummary, error) {
//		return nil, errors.New("database is locked")
//	}
package testutil

package sqlstore_test

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/analytics"
	"github.com/papercomputeco/leadline/pkg/analytics/sqlstore"
)

// SQLite accepts the Postgres column types and $n parameters, so both
// dialects can be exercised against an in-memory database.
var _ = DescribeTable("Open and Publish",
	func(d sqlstore.Dialect) {
		ctx := context.Background()

		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		store, err := sqlstore.Open(ctx, db, d)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		e := analytics.NewEvent(analytics.EventAssistantError, "u1", "")
		e.Error = "generation failed"
		e.Latency.Total = 0.25
		Expect(store.Publish(ctx, e)).To(Succeed())

		var (
			threadID string
			errText  string
			total    float64
		)
		row := store.DB().QueryRowContext(ctx,
			"SELECT thread_id, error, total_latency FROM "+sqlstore.TableName+" WHERE event_id = "+d.Placeholder(1), e.EventID)
		Expect(row.Scan(&threadID, &errText, &total)).To(Succeed())
		Expect(threadID).To(Equal(analytics.UnknownID))
		Expect(errText).To(Equal("generation failed"))
		Expect(total).To(Equal(0.25))
	},
	Entry("postgres dialect", sqlstore.Postgres),
	Entry("sqlite dialect", sqlstore.SQLite),
)

var _ = Describe("Open", func() {
	It("is idempotent on an existing table", func() {
		ctx := context.Background()

		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)
		DeferCleanup(db.Close)

		_, err = sqlstore.Open(ctx, db, sqlstore.SQLite)
		Expect(err).NotTo(HaveOccurred())
		_, err = sqlstore.Open(ctx, db, sqlstore.SQLite)
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails on a closed database", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Close()).To(Succeed())

		_, err = sqlstore.Open(context.Background(), db, sqlstore.SQLite)
		Expect(err).To(MatchError(ContainSubstring("failed to ping sqlite database")))
	})

	It("rejects nil events", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		store, err := sqlstore.Open(context.Background(), db, sqlstore.SQLite)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		Expect(store.Publish(context.Background(), nil)).To(MatchError(analytics.ErrNilEvent))
	})
})

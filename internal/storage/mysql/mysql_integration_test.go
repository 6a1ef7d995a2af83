//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/Vitaee/FlexReviewApi/internal/domain"
	mysqlrepo "github.com/Vitaee/FlexReviewApi/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flexreview",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "flexreview")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_ApprovalLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// unknown review ids read as absent
	if _, err := repo.Get(ctx, 7453); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	// first approval stamps approved_at
	rec, err := repo.Upsert(ctx, 7453, true, pstr("FLX-307"))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !rec.IsApproved || rec.ApprovedAt == nil {
		t.Fatalf("first approval record: %+v", rec)
	}
	if rec.ListingID == nil || *rec.ListingID != "FLX-307" {
		t.Fatalf("listing id: %+v", rec.ListingID)
	}
	firstStamp := *rec.ApprovedAt

	// re-approving is idempotent: approved_at keeps its original value
	time.Sleep(1100 * time.Millisecond) // TIMESTAMP has second precision
	rec, err = repo.Upsert(ctx, 7453, true, nil)
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if rec.ApprovedAt == nil || !rec.ApprovedAt.Equal(firstStamp) {
		t.Fatalf("approved_at moved on re-approval: %v vs %v", rec.ApprovedAt, firstStamp)
	}

	// rejection clears approved_at
	rec, err = repo.Upsert(ctx, 7453, false, nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rec.IsApproved || rec.ApprovedAt != nil {
		t.Fatalf("rejection should clear the stamp: %+v", rec)
	}

	// approving again after rejection sets a fresh stamp
	rec, err = repo.Upsert(ctx, 7453, true, nil)
	if err != nil {
		t.Fatalf("approve again: %v", err)
	}
	if rec.ApprovedAt == nil || !rec.ApprovedAt.After(firstStamp) {
		t.Fatalf("expected a fresh approved_at, got %v (first %v)", rec.ApprovedAt, firstStamp)
	}
}

func TestRepo_MySQL_GetManyAndApprovedIDs(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, 7453, true, pstr("FLX-307")); err != nil {
		t.Fatalf("Upsert 7453: %v", err)
	}
	if _, err := repo.Upsert(ctx, 7454, false, pstr("FLX-307")); err != nil {
		t.Fatalf("Upsert 7454: %v", err)
	}
	if _, err := repo.Upsert(ctx, 7455, true, pstr("FLX-104")); err != nil {
		t.Fatalf("Upsert 7455: %v", err)
	}

	got, err := repo.GetMany(ctx, []int64{7453, 7454, 9999})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetMany size: %d", len(got))
	}
	if !got[7453].IsApproved || got[7454].IsApproved {
		t.Fatalf("GetMany flags: %+v", got)
	}

	empty, err := repo.GetMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetMany(nil): %v %v", empty, err)
	}

	ids, err := repo.ListApprovedIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListApprovedIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("approved ids: %v", ids)
	}

	ids, err = repo.ListApprovedIDs(ctx, pstr("FLX-307"))
	if err != nil {
		t.Fatalf("ListApprovedIDs listing: %v", err)
	}
	if len(ids) != 1 || ids[0] != 7453 {
		t.Fatalf("listing-scoped approved ids: %v", ids)
	}
}

func TestRepo_MySQL_EnsureRecordDoesNotClobber(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if err := repo.EnsureRecord(ctx, 8001, nil); err != nil {
		t.Fatalf("EnsureRecord: %v", err)
	}
	rec, err := repo.Get(ctx, 8001)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.IsApproved || rec.ListingID != nil {
		t.Fatalf("fresh record: %+v", rec)
	}

	// backfills the listing on an existing row
	if err := repo.EnsureRecord(ctx, 8001, pstr("FLX-500")); err != nil {
		t.Fatalf("EnsureRecord backfill: %v", err)
	}
	rec, _ = repo.Get(ctx, 8001)
	if rec.ListingID == nil || *rec.ListingID != "FLX-500" {
		t.Fatalf("listing backfill: %+v", rec)
	}

	// never flips an approval that was set by hand
	if _, err := repo.Upsert(ctx, 8001, true, nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.EnsureRecord(ctx, 8001, pstr("FLX-999")); err != nil {
		t.Fatalf("EnsureRecord after approval: %v", err)
	}
	rec, _ = repo.Get(ctx, 8001)
	if !rec.IsApproved {
		t.Fatal("EnsureRecord must not reset is_approved")
	}
	if rec.ListingID == nil || *rec.ListingID != "FLX-500" {
		t.Fatalf("EnsureRecord must not overwrite an existing listing: %+v", rec)
	}
}
